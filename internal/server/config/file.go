package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/flagx"
	"github.com/dmitrijs2005/studyshare/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Pointer fields
// distinguish "absent" from a zero value so a partial file only overrides
// what it names. Durations accept "90s" or integer nanoseconds.
type FileConfig struct {
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN                  *string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    *string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`

	StorageBackend  *string `json:"storage_backend" yaml:"storage_backend"`
	S3RootUser      *string `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword  *string `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket        *string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region        *string `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint  *string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3PublicBaseURL *string `json:"s3_public_base_url" yaml:"s3_public_base_url"`

	DefaultSchool            *string `json:"default_school" yaml:"default_school"`
	RequireEmailConfirmation *bool   `json:"require_email_confirmation" yaml:"require_email_confirmation"`
	ConfirmationBaseURL      *string `json:"confirmation_base_url" yaml:"confirmation_base_url"`

	MaxUploadSize     *int64          `json:"max_upload_size" yaml:"max_upload_size"`
	RemoteCallTimeout *timex.Duration `json:"remote_call_timeout" yaml:"remote_call_timeout"`
	ProfileCacheSize  *int            `json:"profile_cache_size" yaml:"profile_cache_size"`
	ProfileCacheTTL   *timex.Duration `json:"profile_cache_ttl" yaml:"profile_cache_ttl"`
	PendingUploadTTL  *timex.Duration `json:"pending_upload_ttl" yaml:"pending_upload_ttl"`
	SweepInterval     *timex.Duration `json:"sweep_interval" yaml:"sweep_interval"`

	LogBackend *string `json:"log_backend" yaml:"log_backend"`
	LogFormat  *string `json:"log_format" yaml:"log_format"`
	LogLevel   *string `json:"log_level" yaml:"log_level"`
}

// parseFile overlays values from the file named by -c/-config (or
// STUDYSHARE_CONFIG). Files ending in .yaml or .yml are read as YAML,
// everything else as JSON. Unreadable or malformed files panic.
func parseFile(config *Config) {
	path := flagx.ConfigFile(EnvPrefix + "CONFIG")

	// nothing to load
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(fmt.Errorf("parse config file %s: %w", path, err))
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.SecretKey, fc.SecretKey)
	setDuration(&c.AccessTokenValidityDuration, fc.AccessTokenValidityDuration)
	setDuration(&c.RefreshTokenValidityDuration, fc.RefreshTokenValidityDuration)

	setString(&c.StorageBackend, fc.StorageBackend)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.S3PublicBaseURL, fc.S3PublicBaseURL)

	setString(&c.DefaultSchool, fc.DefaultSchool)
	if fc.RequireEmailConfirmation != nil {
		c.RequireEmailConfirmation = *fc.RequireEmailConfirmation
	}
	setString(&c.ConfirmationBaseURL, fc.ConfirmationBaseURL)

	if fc.MaxUploadSize != nil {
		c.MaxUploadSize = *fc.MaxUploadSize
	}
	setDuration(&c.RemoteCallTimeout, fc.RemoteCallTimeout)
	if fc.ProfileCacheSize != nil {
		c.ProfileCacheSize = *fc.ProfileCacheSize
	}
	setDuration(&c.ProfileCacheTTL, fc.ProfileCacheTTL)
	setDuration(&c.PendingUploadTTL, fc.PendingUploadTTL)
	setDuration(&c.SweepInterval, fc.SweepInterval)

	setString(&c.LogBackend, fc.LogBackend)
	setString(&c.LogFormat, fc.LogFormat)
	setString(&c.LogLevel, fc.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
