// Package config loads runtime configuration for the vector CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "2s" or integer
// nanoseconds:
//
//	{
//	  "destinations": ["https://blossom.example", "nip96+https://nip96.example"],
//	  "proxy": "127.0.0.1:9050",
//	  "retry_count": 3,
//	  "retry_spacing": "2s",
//	  "stall_timeout": "20s",
//	  "auth_secret": "shared-with-the-host",
//	  "s3": {"region": "eu-central-1", "put_expiry": "15m"},
//	  "journal_path": "deliveries.db"
//	}
//
// The derived settings for the transport, the retry controller and upload
// authorization are exposed through (*Config).Network, (*Config).Retry and
// (*Config).Authorizer.
package config
