// Package memory binds conversations to the remote session memory
// service. Storage and retrieval live in the service; this package
// only scopes requests by memory, session, and actor identifiers and
// tracks whether the service is reachable.
package memory
