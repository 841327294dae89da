package ytdlp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"yt2wp/internal/fileutil"
)

// ThumbnailCandidates are tried in order; a 404 moves on to the next one.
var ThumbnailCandidates = []string{
	"maxresdefault.jpg",
	"sddefault.jpg",
	"hqdefault.jpg",
	"mqdefault.jpg",
	"default.jpg",
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

func (d *Downloader) fetchThumbnail(ctx context.Context, videoID, dest string) error {
	base := strings.TrimRight(d.thumbnailBaseURL, "/")
	for _, candidate := range ThumbnailCandidates {
		url := fmt.Sprintf("%s/%s/%s", base, videoID, candidate)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build thumbnail request: %w", err)
		}
		resp, err := d.http.Do(req)
		if err != nil {
			return fmt.Errorf("fetch thumbnail %s: %w", url, err)
		}
		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("fetch thumbnail %s: unexpected status %d", url, resp.StatusCode)
		}
		err = writeBody(dest, resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("no thumbnail available for video %s", videoID)
}

func writeBody(dest string, body io.Reader) error {
	w, err := fileutil.NewAtomicWriter(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Abort()
		return fmt.Errorf("write thumbnail: %w", err)
	}
	if err := w.Commit(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("write thumbnail: %w", err)
	}
	return nil
}
