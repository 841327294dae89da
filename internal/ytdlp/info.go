package ytdlp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// videoInfo is the subset of yt-dlp's -J output the downloader reads.
type videoInfo struct {
	Type        string       `json:"_type"`
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	WebpageURL  string       `json:"webpage_url"`
	URL         string       `json:"url"`
	Entries     []*videoInfo `json:"entries"`
}

func parseInfo(data []byte) (*videoInfo, error) {
	var info videoInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	return &info, nil
}

// videos returns the downloadable entries. A single video is its own entry;
// nested playlists are flattened. Null entries (unavailable videos) are kept
// as nil so callers can report their position.
func (v *videoInfo) videos() []*videoInfo {
	if v == nil {
		return nil
	}
	if v.Type != "playlist" && v.Type != "multi_video" && len(v.Entries) == 0 {
		return []*videoInfo{v}
	}
	var out []*videoInfo
	for _, entry := range v.Entries {
		if entry != nil && len(entry.Entries) > 0 {
			out = append(out, entry.videos()...)
			continue
		}
		out = append(out, entry)
	}
	return out
}

func (v *videoInfo) pageURL() string {
	if u := strings.TrimSpace(v.WebpageURL); u != "" {
		return u
	}
	if u := strings.TrimSpace(v.URL); u != "" {
		return u
	}
	if id := strings.TrimSpace(v.ID); id != "" {
		return "https://www.youtube.com/watch?v=" + id
	}
	return ""
}
