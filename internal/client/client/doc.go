// Package client is the FileVault client's boundary to the outside world.
//
// It declares the two external services the core depends on,
// IdentityService and ObjectStorage, and ships GRPCClient, which
// implements both over the wire contract in internal/rpc. gRPC status
// codes are mapped to the sentinel errors in errors.go with the server's
// message preserved after a colon, so callers match with errors.Is and
// still show the original text.
//
// InitDatabase bootstraps the local SQLite database used to persist the
// session token between runs.
package client
