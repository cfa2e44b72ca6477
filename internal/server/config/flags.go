package config

import (
	"flag"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/authgate/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-p int      listen port
//	-s string   token signing secret
//	-t int      access token validity, hours
//	-b int      bcrypt cost
//	-m string   directory backend (sheety, postgres, memory)
//	-u string   sheety base url
//	-k string   sheety bearer token
//	-d string   postgres DSN
//	-o string   comma-separated CORS origins
//
// Only these flags are looked at, so -c/-config and foreign flags pass through.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-p", "-s", "-t", "-b", "-m", "-u", "-k", "-d", "-o"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.IntVar(&config.Port, "p", config.Port, "port to listen on")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	ttl := fs.Int("t", int(config.AccessTokenValidityDuration.Hours()), "access token validity (in hours)")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.Directory, "m", config.Directory, "directory backend")
	fs.StringVar(&config.DirectoryBaseURL, "u", config.DirectoryBaseURL, "sheety base url")
	fs.StringVar(&config.DirectoryToken, "k", config.DirectoryToken, "sheety bearer token")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	origins := fs.String("o", strings.Join(config.CORSAllowedOrigins, ","), "comma-separated CORS origins")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*ttl) * time.Hour
		case "o":
			config.CORSAllowedOrigins = splitList(*origins)
		}
	})
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
