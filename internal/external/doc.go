// Package external runs the pipeline's collaborator programs.
//
// Collaborators are configured as argv templates (see config.Commands). The
// Client expands placeholders, runs the program through an Executor, streams
// each output line into the structured logger, and reports any non-zero exit
// as an error. The Executor is also used by the built-in yt-dlp downloader.
package external
