package wordpress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"yt2wp/internal/logging"
	"yt2wp/internal/metadata"
)

// MediaClient is the part of Client the uploader uses.
type MediaClient interface {
	UploadMedia(ctx context.Context, path, mimeType string) (Media, error)
	UpdateMedia(ctx context.Context, id int, fields map[string]string) error
}

// UploadRequest describes one uploader invocation.
type UploadRequest struct {
	Dir          string
	MetadataFile string
	DryRun       bool
	SkipMissing  bool
}

// UploadOutcome records what happened to one target.
type UploadOutcome struct {
	Target  Target
	MediaID int
	Err     error
}

// UploadResult summarizes an upload run.
type UploadResult struct {
	Outcomes []UploadOutcome
	Missing  []*MissingMediaError
}

// Failed counts outcomes with an error.
func (r UploadResult) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Uploader pushes a category directory's media to WordPress.
type Uploader struct {
	client MediaClient
	logger *slog.Logger
}

// NewUploader builds an uploader. client may be nil for dry runs.
func NewUploader(client MediaClient, logger *slog.Logger) *Uploader {
	return &Uploader{client: client, logger: logging.NewComponentLogger(logger, "uploader")}
}

// Upload uploads every target. The returned error is non-nil when the
// directory or metadata is unusable or when any single upload failed.
func (u *Uploader) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	logger := logging.WithContext(ctx, u.logger)
	dir, err := filepath.Abs(req.Dir)
	if err != nil {
		return UploadResult{}, fmt.Errorf("resolve %s: %w", req.Dir, err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return UploadResult{}, fmt.Errorf("source directory not found: %s", dir)
	}

	metaPath := req.MetadataFile
	if !filepath.IsAbs(metaPath) {
		metaPath = filepath.Join(dir, metaPath)
	}
	entries, err := metadata.Load(metaPath)
	if err != nil {
		return UploadResult{}, err
	}
	if len(entries) == 0 {
		return UploadResult{}, fmt.Errorf("no entries found in metadata file %s", metaPath)
	}

	targets, missing, err := collectTargets(dir, entries, req.SkipMissing)
	if err != nil {
		return UploadResult{}, err
	}
	result := UploadResult{Missing: missing}
	for _, gap := range missing {
		logger.Warn("skipping entry", logging.Error(gap))
	}
	if len(targets) == 0 {
		logger.Info("nothing to upload; all entries were skipped")
		return result, nil
	}

	for _, target := range targets {
		logger.Info("preparing upload",
			logging.String("kind", string(target.Kind)),
			logging.String("video_id", target.VideoID),
			logging.String("path", target.Path),
		)
	}
	if req.DryRun {
		for _, target := range targets {
			result.Outcomes = append(result.Outcomes, UploadOutcome{Target: target})
		}
		logger.Info("dry run complete; no files were uploaded")
		return result, nil
	}
	if u.client == nil {
		return result, errors.New("wordpress client unavailable")
	}

	for _, target := range targets {
		outcome := UploadOutcome{Target: target}
		media, err := u.client.UploadMedia(ctx, target.Path, target.MimeType)
		if err != nil {
			outcome.Err = err
			logger.Error("upload failed",
				logging.String("video_id", target.VideoID),
				logging.String("kind", string(target.Kind)),
				logging.Error(err),
			)
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}
		outcome.MediaID = media.ID
		if media.ID > 0 {
			if err := u.client.UpdateMedia(ctx, media.ID, mediaFields(target)); err != nil {
				logger.Warn("media metadata update failed", logging.Int("media_id", media.ID), logging.Error(err))
			}
		}
		logger.Info("uploaded",
			logging.String("video_id", target.VideoID),
			logging.String("kind", string(target.Kind)),
			logging.Int("media_id", media.ID),
		)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	failed := result.Failed()
	logger.Info("upload complete",
		logging.Int("succeeded", len(result.Outcomes)-failed),
		logging.Int("failed", failed),
	)
	if failed > 0 {
		return result, fmt.Errorf("%d of %d uploads failed", failed, len(result.Outcomes))
	}
	return result, nil
}

// mediaFields is the title update sent after each upload. Thumbnails with a
// description also get alt text.
func mediaFields(target Target) map[string]string {
	title := strings.TrimSpace(target.Title)
	if title == "" {
		name := filepath.Base(target.Path)
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}
	fields := map[string]string{"title": title}
	if target.Kind == KindThumbnail && strings.TrimSpace(target.Description) != "" {
		alt := strings.TrimSpace(target.Title)
		if alt == "" {
			alt = truncateRunes(target.Description, 120)
		}
		fields["alt_text"] = alt
	}
	return fields
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
