// Package ytdlp is the built-in downloader collaborator.
//
// It asks yt-dlp for the JSON description of a video or playlist, extracts
// audio for every entry, fetches a thumbnail from the YouTube image CDN, and
// merges the entries into the category's metadata file. Entries that fail on
// their own are logged and skipped; the download fails only when nothing at
// all could be collected.
package ytdlp
