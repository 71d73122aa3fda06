package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "10.0.0.1:9090", "-p", "http://pub", "-o", "http://share", "-b", "docs", "-s", "1024", "-d", "/tmp/x.db", "-t", "5", "-l", "debug"},
			expected: &Config{
				ServerEndpointAddr: "10.0.0.1:9090",
				PublicEndpoint:     "http://pub",
				ShareOrigin:        "http://share",
				BucketID:           "docs",
				ChunkSize:          1024,
				DBPath:             "/tmp/x.db",
				RequestTimeout:     5 * time.Second,
				LogLevel:           "debug",
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-x", "1", "-a=host:1", "-c", "cfg.json"},
			expected: &Config{ServerEndpointAddr: "host:1", ChunkSize: 1, RequestTimeout: 0},
		},
		{name: "bad timeout", args: []string{"-t", "abc"}, wantErr: true},
		{name: "zero chunk size", args: []string{"-s", "0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ChunkSize: 1}
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
