// Package pipeline drives a single YouTube to WordPress run.
//
// The Orchestrator validates the Job, resolves the credentials file, takes a
// per-data-root run lock, then walks the stages in order: download (with a
// bounded retry), directory verification, upload, and publish. Collaborators
// are reached through the Downloader, Uploader, and Publisher interfaces; in
// production these are satisfied by external.Client, which runs them as
// subprocesses. Every failure is returned as a *StageError carrying one of the
// services markers so the CLI can map it to an exit code.
//
// Runs are strictly sequential and nothing is persisted between runs.
package pipeline
