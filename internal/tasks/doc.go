// Package tasks orchestrates multi-step journal operations with real-time progress reporting.
//
// # Core Operations
//
// [JournalEngine] implements three operations:
//
//  1. [JournalEngine.Capture] : Record a new memory
//     - Resolves the address at the capture location (reverse geocoding)
//     - Fetches the current weather at the capture location
//     - Hands the capture and its context to the photo store
//     Context lookups are sequential; a failed lookup leaves that field empty and never fails the capture.
//
//  2. [JournalEngine.BulkExport] : Export the journal to a directory
//     - Copies the stored images with a worker pool
//     - Writes a journal document (json, csv, markdown or txt) describing the exported photos
//     - Writes a manifest summarizing successes and failures
//
//  3. [JournalEngine.BulkImport] : Import photos into the journal
//     - From a previous export (journal.json plus images/), keeping timestamps and context
//     - From a plain directory of JPEG files, using file modification times as capture times
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
