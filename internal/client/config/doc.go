// Package config loads runtime configuration for the FileVault CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (LoadDefaults).
//  2. Optional JSON file given with -c or -config.
//  3. Command-line flags.
//
// Example JSON:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "public_endpoint": "https://files.example.com",
//	  "share_origin": "https://share.example.com",
//	  "bucket_id": "files",
//	  "request_timeout": "15s"
//	}
package config
