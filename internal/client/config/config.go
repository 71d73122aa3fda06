package config

import "time"

// UploadPolicyHint is shown next to the upload command. The limit itself is
// enforced by the server.
const UploadPolicyHint = "Max 50MB, any file type."

// Config holds runtime settings of the FileVault CLI.
type Config struct {
	// ServerEndpointAddr is host:port of the gRPC endpoint.
	ServerEndpointAddr string
	// PublicEndpoint is the base URL used to build download and preview links.
	PublicEndpoint string
	// ShareOrigin is the base URL of share links.
	ShareOrigin string
	// BucketID names the storage container holding the user's files.
	BucketID string
	// ChunkSize is the upload transfer unit in bytes.
	ChunkSize int
	// DBPath is the local SQLite database keeping the session token.
	DBPath         string
	RequestTimeout time.Duration
	LogLevel       string
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.PublicEndpoint = "http://127.0.0.1:8080"
	c.ShareOrigin = "http://127.0.0.1:8080"
	c.BucketID = "files"
	c.ChunkSize = 256 * 1024
	c.DBPath = "filevault.db"
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// command-line flags. Later sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
