// Package config loads, normalizes, and validates yt2wp configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// pipeline and the collaborator commands need: the data root, the credentials
// file candidates, the retry ceiling, the argv templates used to invoke the
// downloader, uploader, and publisher, and the WordPress publishing options.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
