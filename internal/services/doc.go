// Package services defines the shared error markers and context helpers used
// by the pipeline orchestrator and the collaborator commands.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that tag every failure
//     with the stage that produced it, so the CLI can print a stage-specific
//     diagnostic and pick an exit code.
//   - Context helpers that stamp run IDs, stage names, and download attempts
//     for logging.
//
// Use these helpers when wiring new stage logic so failures stay classifiable
// with errors.Is across the whole run.
package services
