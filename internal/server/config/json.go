package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/filevault/internal/flagx"
	"github.com/dmitrijs2005/filevault/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept strings such
// as "15m" or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC        string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	PublicEndpoint          string         `json:"public_endpoint"`
	ShareContainerID        string         `json:"share_container_id"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	MaxFileSize             int64          `json:"max_file_size"`
	AllowedMIMETypes        []string       `json:"allowed_mime_types"`
	BlobDriver              string         `json:"blob_driver"`
	S3RootUser              string         `json:"s3_root_user"`
	S3RootPassword          string         `json:"s3_root_password"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
	PresignValidity         timex.Duration `json:"presign_validity"`
	MetadataCacheSize       int            `json:"metadata_cache_size"`
	LogLevel                string         `json:"log_level"`
}

// parseJson overlays cfg with the non-empty fields of the file named by -c
// or -config.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var c JsonConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&cfg.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&cfg.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&cfg.PublicEndpoint, c.PublicEndpoint)
	setString(&cfg.ShareContainerID, c.ShareContainerID)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.SecretKey, c.SecretKey)
	setString(&cfg.BlobDriver, c.BlobDriver)
	setString(&cfg.S3RootUser, c.S3RootUser)
	setString(&cfg.S3RootPassword, c.S3RootPassword)
	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&cfg.LogLevel, c.LogLevel)

	if c.SessionValidityDuration.Duration > 0 {
		cfg.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.PresignValidity.Duration > 0 {
		cfg.PresignValidity = c.PresignValidity.Duration
	}
	if c.MaxFileSize > 0 {
		cfg.MaxFileSize = c.MaxFileSize
	}
	if c.MetadataCacheSize > 0 {
		cfg.MetadataCacheSize = c.MetadataCacheSize
	}
	if c.AllowedMIMETypes != nil {
		cfg.AllowedMIMETypes = c.AllowedMIMETypes
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
