package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/filevault/internal/flagx"
)

var knownFlags = []string{"-a", "-p", "-o", "-b", "-s", "-d", "-t", "-l"}

// parseFlags overlays cfg with the flags it knows about; anything else in
// args is ignored.
//
//	-a string   gRPC server address
//	-p string   public endpoint for download/preview links
//	-o string   share link origin
//	-b string   bucket id
//	-s int      upload chunk size in bytes
//	-d string   local database path
//	-t int      request timeout in seconds
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("filevault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the server")
	fs.StringVar(&cfg.PublicEndpoint, "p", cfg.PublicEndpoint, "public endpoint for download and preview links")
	fs.StringVar(&cfg.ShareOrigin, "o", cfg.ShareOrigin, "share link origin")
	fs.StringVar(&cfg.BucketID, "b", cfg.BucketID, "bucket id")
	fs.IntVar(&cfg.ChunkSize, "s", cfg.ChunkSize, "upload chunk size in bytes")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
