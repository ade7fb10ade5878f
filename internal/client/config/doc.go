// Package config loads runtime configuration for the StudyShare terminal
// client.
//
// Sources, lowest precedence first:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file named by -c/-config or STUDYSHARE_CLIENT_CONFIG.
//  3. STUDYSHARE_CLIENT_* environment variables.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-t int      per-request timeout (seconds)
//	-s string   path of the local session database
//
// Example file:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s",
//	  "session_db": "studyshare.db",
//	  "max_upload_size": 20971520
//	}
package config
