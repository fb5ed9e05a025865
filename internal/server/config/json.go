package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pairchat/internal/flagx"
	"github.com/dmitrijs2005/pairchat/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Absent keys leave the corresponding Config field untouched.
type JsonConfig struct {
	HTTPAddr                     *string         `json:"http_addr"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   *string         `json:"s3_root_user"`
	S3RootPassword               *string         `json:"s3_root_password"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
	AttachmentBaseURL            *string         `json:"attachment_base_url"`
	MaxAttachmentSize            *int64          `json:"max_attachment_size"`
	AllowedOrigins               []string        `json:"allowed_origins"`
	MaxMessageSize               *int64          `json:"max_message_size"`
	LogLevel                     *string         `json:"log_level"`
}

// parseJson loads the file named by -c / -config into config.
// Nothing happens when neither flag is set. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.AttachmentBaseURL, c.AttachmentBaseURL)
	if c.MaxAttachmentSize != nil {
		config.MaxAttachmentSize = *c.MaxAttachmentSize
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.MaxMessageSize != nil {
		config.MaxMessageSize = *c.MaxMessageSize
	}
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
