package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/authgate/internal/flagx"
	"github.com/dmitrijs2005/authgate/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Empty fields do not override
// what is already set.
type JsonConfig struct {
	Host                        string         `json:"host"`
	Port                        int            `json:"port"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	Directory                   string         `json:"directory"`
	DirectoryBaseURL            string         `json:"directory_base_url"`
	DirectoryToken              string         `json:"directory_token"`
	DatabaseDSN                 string         `json:"database_dsn"`
	ContactsSource              string         `json:"contacts_source"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Key                       string         `json:"s3_key"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	CORSAllowedOrigins          []string       `json:"cors_allowed_origins"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.Host, c.Host)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Directory, c.Directory)
	setString(&config.DirectoryBaseURL, c.DirectoryBaseURL)
	setString(&config.DirectoryToken, c.DirectoryToken)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.ContactsSource, c.ContactsSource)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Key, c.S3Key)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	if c.Port != 0 {
		config.Port = c.Port
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
