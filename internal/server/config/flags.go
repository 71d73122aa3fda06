package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/filevault/internal/flagx"
)

var knownFlags = []string{"-a", "-h", "-P", "-d", "-s", "-t", "-m", "-T", "-D", "-u", "-p", "-b", "-g", "-e", "-l", "-S"}

// parseFlags overlays cfg with the flags it recognizes.
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-h string   HTTP bind address (e.g. ":8080")
//	-P string   public base URL of the HTTP endpoint
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-t int      session validity, minutes
//	-m int      max upload size, bytes
//	-T string   comma separated MIME allow-list
//	-D string   blob driver: s3, minio or memory
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-l string   log level
//	-S string   container resolved by share links
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("filevault-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.EndpointAddrGRPC, "a", cfg.EndpointAddrGRPC, "address and port to run the gRPC server")
	fs.StringVar(&cfg.EndpointAddrHTTP, "h", cfg.EndpointAddrHTTP, "address and port to run the HTTP server")
	fs.StringVar(&cfg.PublicEndpoint, "P", cfg.PublicEndpoint, "public base URL of the HTTP server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	validity := fs.Int("t", int(cfg.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	fs.Int64Var(&cfg.MaxFileSize, "m", cfg.MaxFileSize, "max upload size in bytes")
	allowed := fs.String("T", "", "comma separated list of allowed MIME types")
	fs.StringVar(&cfg.BlobDriver, "D", cfg.BlobDriver, "blob driver (s3|minio|memory)")
	fs.StringVar(&cfg.S3RootUser, "u", cfg.S3RootUser, "S3 root user")
	fs.StringVar(&cfg.S3RootPassword, "p", cfg.S3RootPassword, "S3 root password")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.ShareContainerID, "S", cfg.ShareContainerID, "container resolved by share links")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.SessionValidityDuration = time.Duration(*validity) * time.Minute
	if *allowed != "" {
		cfg.AllowedMIMETypes = splitList(*allowed)
	}
	return nil
}
