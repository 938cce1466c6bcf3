package source

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/carry/date"
	"github.com/rs/zerolog"
)

// DailyCache is an http.RoundTripper keeping successful GET responses on disk until the end of
// the day. It lets short lived processes share what they fetched.
type DailyCache struct {
	base   http.RoundTripper
	dir    string
	today  func() date.Date
	logger zerolog.Logger
}

// NewDailyCache stores responses of base in dir. A nil base is http.DefaultTransport.
func NewDailyCache(dir string, base http.RoundTripper, logger zerolog.Logger) *DailyCache {
	if base == nil {
		base = http.DefaultTransport
	}
	return &DailyCache{base: base, dir: dir, today: date.Today, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (c *DailyCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.base.RoundTrip(req)
	}
	// the day is part of the key, so entries expire every day.
	key := fmt.Sprintf("%x", sha1.Sum([]byte(c.today().String()+" "+req.URL.String())))

	if resp, err := c.get(key, req); err == nil {
		c.logger.Debug().Str("url", req.URL.String()).Msg("http cache hit")
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("url", req.URL.String()).Str("status", resp.Status).Msg("http get")
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.logger.Warn().Err(err).Msg("http cache write failed")
	}
	return resp, nil
}

func (c *DailyCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put dumps resp to disk. The body of resp stays readable.
func (c *DailyCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}
