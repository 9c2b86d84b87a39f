// Package materialize reconciles a staged file set against a destination
// project tree.
//
// The first generation (Create) writes everything and records a
// fingerprint per file; later runs (Update) compare each staged file
// against the recorded fingerprint and the file's current on-disk
// fingerprint, so user edits to managed files are detected and never
// silently clobbered. Conflicts are returned as a pending-decision list;
// the caller resolves them with a decision map and runs Update again.
// The package performs no terminal I/O.
//
// Staging happens entirely before any filesystem mutation: a failed
// render means zero writes. Per file, content is written before its
// record, so an interrupted run leaves the record set consistent with
// what actually reached disk and is recoverable by re-running Update.
package materialize
