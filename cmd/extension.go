package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

const (
	EnvConfigFile = "CTS_CONFIG"
	EnvDataDir    = "CTS_DATA_DIR"
	EnvPortfolio  = "CTS_PORTFOLIO"
	EnvInstrument = "CTS_INSTRUMENT"
	EnvLogLevel   = "CTS_LOG_LEVEL"
)

// RunExtension attempts to find and execute an external cts-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	lp, err := exec.LookPath("cts-" + subcommand)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// the extension sees the resolved configuration, not just the flags.
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, EnvConfigFile+"="+*configFile)
	if cfg, err := LoadConfig(*configFile); err == nil {
		if *dataDir != "" {
			cfg.DataDir = *dataDir
		}
		if *logLevel != "" {
			cfg.Logging.Level = *logLevel
		}
		cmd.Env = append(cmd.Env,
			EnvDataDir+"="+cfg.DataDir,
			EnvPortfolio+"="+cfg.Portfolio,
			EnvInstrument+"="+cfg.Instrument,
			EnvLogLevel+"="+cfg.Logging.Level,
		)
	}

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", lp, err)
		return true, 1
	}
	return true, 0
}
