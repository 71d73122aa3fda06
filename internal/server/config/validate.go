package config

import (
	"fmt"
	"strings"
)

func (c *Config) validate() error {
	switch c.BlobDriver {
	case "s3", "minio", "memory":
	default:
		return fmt.Errorf("unknown blob driver %q", c.BlobDriver)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize)
	}
	if c.SessionValidityDuration <= 0 {
		return fmt.Errorf("session validity must be positive, got %s", c.SessionValidityDuration)
	}
	return nil
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
