package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/sitescope/internal/config"
	"github.com/nao1215/sitescope/internal/log"
)

// buildConfig creates a Config from the global flags, the optional config
// file and the environment. Command-specific flags are applied by callers.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	cfg.Verbose = boolFlag(flags, "verbose", false)
	cfg.LogFormat = stringFlag(flags, "log-format", cfg.LogFormat)
	cfg.ConfigFilePath = stringFlag(flags, "config", "")
	cfg.EnvFilePath = stringFlag(flags, "env-file", cfg.EnvFilePath)

	// An explicit path must exist; otherwise a missing file is fine.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(cf)
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// addFetchFlags registers the request flags shared by analyze and serve.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultPageTimeout,
		"Timeout for the page request")
	cmd.Flags().Duration("resource-timeout", config.DefaultResourceTimeout,
		"Timeout for each stylesheet or script request")
	cmd.Flags().Int("concurrency", config.DefaultResourceConcurrency,
		"Stylesheets and scripts fetched at once per page")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address for outbound requests (e.g., 127.0.0.1:9050)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Bool("robots", false,
		"Skip pages disallowed by the site's robots.txt")
}

// applyFetchFlags copies the request flags into cfg.
func applyFetchFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if cfg.PageTimeout, err = flags.GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.ResourceTimeout, err = flags.GetDuration("resource-timeout"); err != nil {
		return err
	}
	if cfg.ResourceConcurrency, err = flags.GetInt("concurrency"); err != nil {
		return err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return err
	}
	if cfg.RespectRobots, err = flags.GetBool("robots"); err != nil {
		return err
	}
	return nil
}

// boolFlag reads a flag that may be inherited from the root command. When
// the command runs detached from the root the default is used.
func boolFlag(flags *pflag.FlagSet, name string, def bool) bool {
	if flags.Lookup(name) == nil {
		return def
	}
	v, err := flags.GetBool(name)
	if err != nil {
		return def
	}
	return v
}

func stringFlag(flags *pflag.FlagSet, name, def string) string {
	if flags.Lookup(name) == nil {
		return def
	}
	v, err := flags.GetString(name)
	if err != nil {
		return def
	}
	return v
}

// setupLogger creates the secure structured logger on stderr.
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return log.NewSecureLogger(w, cfg.Verbose, cfg.LogFormat)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// errAnalysesFailed is returned when at least one target could not be analyzed.
var errAnalysesFailed = errors.New("some analyses failed")
