// Package sqlite provides the SQLite-based corpus and settings stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single database file holds:
//
//   - documents: one row per indexed file, unique by absolute path
//   - documents_fts: an FTS5 external-content mirror of title, content and
//     reference, kept in sync by triggers
//   - document_embeddings: one float32 vector per document, deleted with it
//   - settings: runtime key/value settings such as the corpus folder
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files;
// applied versions are recorded in schema_migrations.
//
// # Search
//
// Full-text queries are reduced to quoted prefix terms and ranked with bm25.
// Vector search is a linear cosine scan over stored embeddings.
//
// # Data Location
//
// By default, the database is stored at ~/.sermonindex/data/sermonindex.db
//
// # Thread Safety
//
// All operations are thread-safe. The store holds a single connection, so
// statements are serialized; SQLite runs in WAL mode.
package sqlite
