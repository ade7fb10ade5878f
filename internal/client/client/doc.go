// Package client contains the transport side of the StudyShare CLI.
//
// It provides the Client contract used by the services, a gRPC
// implementation (GRPCClient) that attaches the access token to every call,
// refreshes it once when the server reports it expired and maps status codes
// back to sentinel errors, and InitDatabase, which opens the local SQLite
// session database and applies its embedded goose migrations.
//
// Transport failures surface as ErrUnavailable, rejected credentials as
// ErrUnauthorized. Domain failures reuse the sentinels from internal/common,
// so callers match both with errors.Is.
package client
