package cli

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/authgate/internal/common"
)

// SecretConfig holds settings for signing secret generation.
type SecretConfig struct {
	Bytes int
}

// ParseSecretConfig parses the secret subcommand flags.
func ParseSecretConfig(fs *flag.FlagSet, args []string) (SecretConfig, error) {
	cfg := SecretConfig{Bytes: common.TokenSecretSize}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes")
	if err := fs.Parse(args); err != nil {
		return SecretConfig{}, err
	}
	return cfg, nil
}

// WriteSecret generates a secret and writes it to out as an env line ready
// for a .env file.
func WriteSecret(cfg SecretConfig, out io.Writer, reader io.Reader) error {
	if cfg.Bytes <= 0 {
		return errors.New("bytes must be greater than zero")
	}
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}
	defer common.WipeByteArray(buf)

	_, err := fmt.Fprintf(out, "TOKEN_SECRET=%s\n", hex.EncodeToString(buf))
	return err
}
