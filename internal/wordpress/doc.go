// Package wordpress implements the uploader and post publisher collaborators
// against the WordPress REST API (wp-json/wp/v2).
//
// Client wraps the handful of endpoints yt2wp touches and authenticates with
// an application password over HTTP basic auth. Uploader pushes each
// metadata entry's audio and thumbnail into the media library. Publisher
// renders one post per entry around the dharma_player shortcode and files it
// under the category named after the data directory.
package wordpress
