// Package main hosts the yt2wp CLI entrypoint and command graph.
//
// The root command runs the download, verify, upload, and publish pipeline
// for one playlist. The download, upload, and publish subcommands are the
// default collaborator programs the pipeline invokes through its argv
// templates; they can also be run by hand. status, check, and config are
// support commands.
package main
