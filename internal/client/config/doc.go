// Package config loads runtime configuration for the pairchat CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the pairchat server
//	-t int      per-request timeout (seconds)
//	-d string   directory holding the local session and message cache
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:5001",
//	  "request_timeout": "10s",
//	  "data_dir": "/home/me/.config/pairchat",
//	  "online_check_interval": "5s"
//	}
package config
