// Package handler implements the invocation request handler and its
// HTTP surface. A request either fully succeeds (200 with response
// text and metrics) or fully fails (400 on validation, 500 on any
// delegated-service error).
package handler
