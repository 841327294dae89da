package wordpress

import (
	"fmt"
	"os"
	"path/filepath"

	"yt2wp/internal/metadata"
)

type mediaType struct {
	ext  string
	mime string
}

// Extensions are probed in order; the first existing file wins.
var (
	audioTypes = []mediaType{
		{".mp3", "audio/mpeg"},
		{".m4a", "audio/mp4"},
		{".aac", "audio/aac"},
		{".flac", "audio/flac"},
		{".wav", "audio/wav"},
		{".ogg", "audio/ogg"},
	}
	imageTypes = []mediaType{
		{".jpg", "image/jpeg"},
		{".jpeg", "image/jpeg"},
		{".png", "image/png"},
		{".webp", "image/webp"},
	}
)

// Kind distinguishes the two files uploaded per entry.
type Kind string

const (
	KindAudio     Kind = "audio"
	KindThumbnail Kind = "thumbnail"
)

// Target is one file to upload.
type Target struct {
	VideoID     string
	Path        string
	Kind        Kind
	MimeType    string
	Title       string
	Description string
}

// MissingMediaError reports an entry without an audio or image file.
type MissingMediaError struct {
	VideoID   string
	Audio     bool
	Thumbnail bool
}

func (e *MissingMediaError) Error() string {
	return fmt.Sprintf("missing files for %s: audio=%s, thumbnail=%s", e.VideoID, presence(e.Audio), presence(e.Thumbnail))
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}

// collectTargets pairs every entry with its audio and image file in dir. With
// skipMissing, incomplete entries are returned in missing instead of failing.
func collectTargets(dir string, entries []metadata.Entry, skipMissing bool) ([]Target, []*MissingMediaError, error) {
	var targets []Target
	var missing []*MissingMediaError
	for _, entry := range entries {
		audioPath, audioMime, hasAudio := probe(dir, entry.ID, audioTypes)
		imagePath, imageMime, hasImage := probe(dir, entry.ID, imageTypes)
		if !hasAudio || !hasImage {
			gap := &MissingMediaError{VideoID: entry.ID, Audio: hasAudio, Thumbnail: hasImage}
			if !skipMissing {
				return nil, nil, gap
			}
			missing = append(missing, gap)
			continue
		}
		targets = append(targets,
			Target{VideoID: entry.ID, Path: audioPath, Kind: KindAudio, MimeType: audioMime, Title: entry.Title, Description: entry.Description},
			Target{VideoID: entry.ID, Path: imagePath, Kind: KindThumbnail, MimeType: imageMime, Title: entry.Title, Description: entry.Description},
		)
	}
	return targets, missing, nil
}

func probe(dir, id string, types []mediaType) (string, string, bool) {
	for _, t := range types {
		path := filepath.Join(dir, id+t.ext)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, t.mime, true
		}
	}
	return "", "", false
}
