package domain

// FileStatus is the outcome of indexing one file.
type FileStatus int

const (
	// FileUnchanged indicates the stored hash matched and nothing was written.
	FileUnchanged FileStatus = iota

	// FileAdded indicates a new document was inserted.
	FileAdded

	// FileUpdated indicates an existing document was rewritten.
	FileUpdated
)

// String returns the status name.
func (s FileStatus) String() string {
	switch s {
	case FileAdded:
		return "added"
	case FileUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// IndexingResult summarises one batch indexing run.
// It is returned to the caller and never persisted.
type IndexingResult struct {
	// Added is the number of new documents.
	Added int

	// Updated is the number of rewritten documents.
	Updated int

	// Removed is the number of documents whose backing file disappeared.
	Removed int

	// Unchanged is the number of files skipped by the hash check.
	Unchanged int

	// Errors holds one "<filename>: <message>" entry per failed file.
	Errors []string

	// Cancelled is true when the run stopped before processing every file.
	// A cancelled run never removes documents.
	Cancelled bool
}

// IndexingProgress is emitted before each file of a batch run.
type IndexingProgress struct {
	// Total is the number of files found by the scan.
	Total int

	// Current is the 1-based position of the file about to be processed.
	Current int

	// CurrentFile is the base name of that file.
	CurrentFile string
}

// Percent returns progress as a value between 0 and 100.
func (p IndexingProgress) Percent() int {
	if p.Total == 0 {
		return 100
	}
	return p.Current * 100 / p.Total
}

// ChangeType represents the type of filesystem change.
type ChangeType int

const (
	// ChangeUpserted indicates a file was created or modified.
	ChangeUpserted ChangeType = iota

	// ChangeDeleted indicates a file was removed or renamed away.
	ChangeDeleted
)

// String returns the change type name.
func (c ChangeType) String() string {
	if c == ChangeDeleted {
		return "deleted"
	}
	return "upserted"
}

// FileEvent is a debounced change to one file under the watched folder.
type FileEvent struct {
	// Type is the kind of change.
	Type ChangeType

	// Path is the absolute path of the file.
	Path string
}

// EmbeddingRunResult summarises an "index missing embeddings" run.
type EmbeddingRunResult struct {
	// Processed is the number of documents that received an embedding.
	Processed int

	// Errors holds one "<title>: <message>" entry per failed document.
	Errors []string
}
