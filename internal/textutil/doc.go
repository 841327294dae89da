// Package textutil turns free-text labels and file names into values that are
// safe to use on disk and in WordPress requests.
//
// SanitizeLabel is the naming rule for playlist and category labels: the same
// token names the working directory under the data root and the category the
// publisher assigns to posts, so it must stay human-recognizable while never
// escaping a single path segment.
package textutil
