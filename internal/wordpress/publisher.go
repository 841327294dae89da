package wordpress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"yt2wp/internal/fileutil"
	"yt2wp/internal/logging"
	"yt2wp/internal/metadata"
)

// PostClient is the part of Client the publisher uses.
type PostClient interface {
	EnsureCategory(ctx context.Context, name string) (int, error)
	CreatePost(ctx context.Context, post Post) (CreatedPost, error)
}

// PublishRequest describes one publisher invocation.
type PublishRequest struct {
	DataRoot     string
	MetadataFile string
	// Categories restricts processing to these directory names. Empty means
	// every directory that holds a metadata file.
	Categories []string
	Status     string
	MediaBase  string
	AudioExt   string
	Skip       int
	DryRun     bool
}

// PostOutcome records one post.
type PostOutcome struct {
	Category   string
	Entry      metadata.Entry
	PostID     int
	Link       string
	AudioFound bool
	ImageFound bool
	Err        error
}

// PublishResult summarizes a publish run.
type PublishResult struct {
	Posts []PostOutcome
	// CategoryErrors holds categories that could not be resolved or read.
	CategoryErrors map[string]error
}

// Failed counts failed posts and categories.
func (r PublishResult) Failed() int {
	n := len(r.CategoryErrors)
	for _, p := range r.Posts {
		if p.Err != nil {
			n++
		}
	}
	return n
}

// Publisher creates posts from metadata files.
type Publisher struct {
	client PostClient
	logger *slog.Logger
}

// NewPublisher builds a publisher. client may be nil for dry runs.
func NewPublisher(client PostClient, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logging.NewComponentLogger(logger, "publisher")}
}

type categoryDir struct {
	name     string
	metaPath string
}

// Publish creates one post per metadata entry. Any failed category or post
// makes the returned error non-nil; processing continues past failures.
func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (PublishResult, error) {
	logger := logging.WithContext(ctx, p.logger)
	result := PublishResult{CategoryErrors: map[string]error{}}

	dirs, err := p.discover(logger, req)
	if err != nil {
		return result, err
	}
	if len(dirs) == 0 {
		logger.Info("no metadata files found to process")
		return result, nil
	}
	if !req.DryRun && p.client == nil {
		return result, errors.New("wordpress client unavailable")
	}

	audioExt := strings.TrimPrefix(strings.TrimSpace(req.AudioExt), ".")
	if audioExt == "" {
		audioExt = "mp3"
	}
	mediaBase := strings.TrimRight(req.MediaBase, "/")

	for _, dir := range dirs {
		entries, err := metadata.Load(dir.metaPath)
		if err != nil {
			result.CategoryErrors[dir.name] = err
			logger.Error("metadata unreadable", logging.String("category", dir.name), logging.Error(err))
			continue
		}
		entries = withTitles(entries)
		if len(entries) == 0 {
			logger.Info("no entries in metadata", logging.String("path", dir.metaPath))
			continue
		}

		categoryID := 0
		if !req.DryRun {
			categoryID, err = p.client.EnsureCategory(ctx, dir.name)
			if err != nil {
				result.CategoryErrors[dir.name] = err
				logger.Error("category unavailable", logging.String("category", dir.name), logging.Error(err))
				continue
			}
		}
		logger.Info("processing category",
			logging.String("category", dir.name),
			logging.Int("posts", len(entries)),
		)

		for _, entry := range entries {
			outcome := PostOutcome{Category: dir.name, Entry: entry}
			if req.DryRun {
				base := filepath.Dir(dir.metaPath)
				outcome.AudioFound = fileExists(filepath.Join(base, entry.ID+"."+audioExt))
				outcome.ImageFound = fileExists(filepath.Join(base, entry.ID+".jpg"))
				result.Posts = append(result.Posts, outcome)
				continue
			}
			created, err := p.client.CreatePost(ctx, Post{
				Title:      entry.Title,
				Content:    RenderContent(mediaBase, entry, audioExt, req.Skip),
				Status:     req.Status,
				Categories: []int{categoryID},
			})
			if err != nil {
				outcome.Err = err
				logger.Error("post creation failed", logging.String("title", entry.Title), logging.Error(err))
			} else {
				outcome.PostID = created.ID
				outcome.Link = created.Link
				logger.Info("post created",
					logging.String("title", entry.Title),
					logging.Int("post_id", created.ID),
					logging.String("link", created.Link),
				)
			}
			result.Posts = append(result.Posts, outcome)
		}
	}

	if failed := result.Failed(); failed > 0 {
		return result, fmt.Errorf("%d posts or categories failed", failed)
	}
	return result, nil
}

// discover lists category directories holding a metadata file. Requested
// categories that do not resolve to such a directory are an error.
func (p *Publisher) discover(logger *slog.Logger, req PublishRequest) ([]categoryDir, error) {
	names, err := fileutil.Subdirectories(req.DataRoot)
	if err != nil {
		return nil, fmt.Errorf("data root not found: %w", err)
	}

	wanted := map[string]bool{}
	for _, c := range req.Categories {
		if c = strings.TrimSpace(c); c != "" {
			wanted[c] = false
		}
	}

	var dirs []categoryDir
	for _, name := range names {
		if len(wanted) > 0 {
			if _, ok := wanted[name]; !ok {
				continue
			}
		}
		metaPath := filepath.Join(req.DataRoot, name, req.MetadataFile)
		if !fileExists(metaPath) {
			logger.Info("skipping directory without metadata", logging.String("directory", name))
			continue
		}
		if len(wanted) > 0 {
			wanted[name] = true
		}
		dirs = append(dirs, categoryDir{name: name, metaPath: metaPath})
	}

	var unresolved []string
	for name, found := range wanted {
		if !found {
			unresolved = append(unresolved, name)
		}
	}
	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return nil, fmt.Errorf("no %s found for categories: %s", req.MetadataFile, strings.Join(unresolved, ", "))
	}
	return dirs, nil
}

// withTitles drops entries without a title; a post cannot be created for them.
func withTitles(entries []metadata.Entry) []metadata.Entry {
	out := entries[:0]
	for _, e := range entries {
		if strings.TrimSpace(e.Title) != "" {
			out = append(out, e)
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
