// Package memory provides in-memory implementations of the driven store
// ports, used as fakes by service and CLI tests. Nothing is persisted.
package memory
