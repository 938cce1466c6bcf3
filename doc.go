// Package carry evaluates a carry trade: borrowing pesos through cauciones (short collateralized
// repos) and parking them in a money-market fund (FCI) that is expected to yield more than the
// financing costs.
//
// The package is a stateless engine. It takes already resolved snapshots (fund share prices,
// trades, financing operations) and an explicit evaluation day, and returns plain results:
//   - Price series and share price (VCP) lookups, strict or inclusive of the target day.
//   - The fund's annual yield (TNA) estimated from its prices, with a documented fallback.
//   - Average-cost positions and their valuation.
//   - The spread of each caución: what its capital earned, or is expected to earn, in the fund
//     minus what it cost.
//   - The financing curve by tenor, from operations or from a CSV export.
//   - The daily history of fund and financing rates, and the legs found in settlement documents.
//
// Insufficient data never fails: operations that cannot be evaluated are left out of results and
// aggregates, estimates fall back to constants and say so. Fetching, caching and rendering live in
// the source, renderer and cmd packages.
package carry
