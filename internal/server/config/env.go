package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "FILEVAULT_"

// dotenvFile is loaded when present; variables already set in the
// environment win over it.
var dotenvFile = ".env"

// parseEnv overlays cfg with FILEVAULT_* variables.
func parseEnv(cfg *Config) error {
	if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dotenvFile, err)
	}

	envString(&cfg.EndpointAddrGRPC, "GRPC_ADDR")
	envString(&cfg.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&cfg.PublicEndpoint, "PUBLIC_ENDPOINT")
	envString(&cfg.DatabaseDSN, "DATABASE_DSN")
	envString(&cfg.SecretKey, "SECRET_KEY")
	envString(&cfg.BlobDriver, "BLOB_DRIVER")
	envString(&cfg.S3RootUser, "S3_ROOT_USER")
	envString(&cfg.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&cfg.S3Bucket, "S3_BUCKET")
	envString(&cfg.ShareContainerID, "SHARE_CONTAINER")
	envString(&cfg.S3Region, "S3_REGION")
	envString(&cfg.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&cfg.LogLevel, "LOG_LEVEL")

	if v, ok := lookup("ALLOWED_MIME_TYPES"); ok {
		cfg.AllowedMIMETypes = splitList(v)
	}
	if err := envInt64(&cfg.MaxFileSize, "MAX_FILE_SIZE"); err != nil {
		return err
	}
	if err := envDuration(&cfg.SessionValidityDuration, "SESSION_VALIDITY"); err != nil {
		return err
	}
	if err := envDuration(&cfg.PresignValidity, "PRESIGN_VALIDITY"); err != nil {
		return err
	}
	if v, ok := lookup("METADATA_CACHE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMETADATA_CACHE_SIZE: %w", EnvPrefix, err)
		}
		cfg.MetadataCacheSize = n
	}
	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func envString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func envInt64(dst *int64, name string) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	*dst = n
	return nil
}

func envDuration(dst *time.Duration, name string) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	*dst = d
	return nil
}
