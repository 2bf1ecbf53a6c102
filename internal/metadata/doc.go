// Package metadata recovers a title, an ISO date and a scripture reference
// from extracted document text.
//
// Each field is found by an ordered list of rules; the first rule that
// matches wins. All three fields are optional and absence is not an error.
// Parse is a pure function and safe for concurrent use.
package metadata
