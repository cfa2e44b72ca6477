package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/authgate/internal/flagx"
)

// parseFlags reads the CLI's global flags:
//
//	-a string         gateway base URL
//	-timeout duration per-request timeout
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-timeout"})

	fs := flag.NewFlagSet("authgate-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "gateway base URL")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")

	return fs.Parse(args)
}
