package mcp

import (
	"github.com/custodia-labs/sermonindex/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Document reads documents and corpus statistics. Optional: without
	// it the document tools and resources are not registered.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
