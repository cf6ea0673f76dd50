// Package tasks runs cancellable background work with real-time progress reporting.
//
// # Registry
//
// [Registry] keys running tasks by logical intent. Beginning a task for an intent cancels the context of the
// task it replaces, so at most one task per intent is live and its predecessor's result can be discarded.
//
// # Library Export
//
// [Exporter] exports a user's favorites, listening history, most played songs, emotion history and emotion
// stats to files concurrently:
//
//  1. Each section is a job fed to a bounded worker pool.
//  2. Fetches are paced by a [rate.Limiter].
//  3. Each section is rendered by the formatter package (json, csv, markdown, txt).
//  4. A manifest summarizing the run is written last.
//
// Failures are per-section; one failed section does not stop the others.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters and a message. Updates use select with default
// so a slow reader never stalls the export.
package tasks
