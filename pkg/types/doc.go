// Package types defines the export document model: scalar column values,
// ordered rows, per-table extraction results, and the document that wraps
// them, together with the sentinel errors shared by every stage.
package types
