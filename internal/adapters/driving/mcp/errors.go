// Package mcp provides an MCP (Model Context Protocol) server adapter for
// sermonindex. It lets AI assistants search the sermon corpus and read
// individual sermons.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
