package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"yt2wp/internal/config"
	"yt2wp/internal/external"
	"yt2wp/internal/logging"
	"yt2wp/internal/metadata"
	"yt2wp/internal/textutil"
)

// Option configures the downloader.
type Option func(*Downloader)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec external.Executor) Option {
	return func(d *Downloader) {
		if exec != nil {
			d.exec = exec
		}
	}
}

// WithHTTPClient overrides the thumbnail HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(d *Downloader) {
		if client != nil {
			d.http = client
		}
	}
}

// WithLogger sets the downloader logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Request describes one download invocation.
type Request struct {
	URL string
	// Label names the category directory. When empty the playlist title is
	// used instead.
	Label       string
	DataRoot    string
	CookiesFile string
	// NoPlaylist restricts a watch URL that carries a list parameter to the
	// single video.
	NoPlaylist bool
}

// Result summarizes a download.
type Result struct {
	Directory  string
	Category   string
	Entries    int
	Downloaded int
	Skipped    int
}

// Downloader drives yt-dlp.
type Downloader struct {
	binary           string
	audioFormat      string
	audioQuality     string
	thumbnailBaseURL string
	metadataFile     string
	exec             external.Executor
	http             HTTPDoer
	logger           *slog.Logger
}

// New builds a downloader from config.
func New(cfg config.Downloader, opts ...Option) *Downloader {
	d := &Downloader{
		binary:           strings.TrimSpace(cfg.YtdlpBinary),
		audioFormat:      strings.TrimSpace(cfg.AudioFormat),
		audioQuality:     strings.TrimSpace(cfg.AudioQuality),
		thumbnailBaseURL: strings.TrimSpace(cfg.ThumbnailBaseURL),
		metadataFile:     strings.TrimSpace(cfg.MetadataFile),
		exec:             external.NewExecutor(),
		http:             &http.Client{Timeout: 30 * time.Second},
		logger:           logging.NewNop(),
	}
	if d.binary == "" {
		d.binary = "yt-dlp"
	}
	if d.audioFormat == "" {
		d.audioFormat = "mp3"
	}
	if d.metadataFile == "" {
		d.metadataFile = "playlist_metadata.json"
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(d.logger, "downloader")
	return d
}

// Download fetches every entry behind req.URL into the category directory.
func (d *Downloader) Download(ctx context.Context, req Request) (Result, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return Result{}, errors.New("source URL is required")
	}
	if req.CookiesFile != "" {
		if _, err := os.Stat(req.CookiesFile); err != nil {
			return Result{}, fmt.Errorf("cookies file: %w", err)
		}
	}
	logger := logging.WithContext(ctx, d.logger)

	info, err := d.probe(ctx, logger, req, url)
	if err != nil {
		return Result{}, err
	}
	videos := info.videos()
	if len(videos) == 0 {
		return Result{}, fmt.Errorf("%s contains no downloadable entries", url)
	}

	category := textutil.SanitizeLabel(req.Label)
	if strings.TrimSpace(req.Label) == "" {
		category = textutil.SanitizeLabel(info.Title)
		if category == "" {
			category = textutil.SanitizeLabel("playlist-" + info.ID)
		}
	}
	if category == "" {
		return Result{}, fmt.Errorf("label %q has no usable characters", req.Label)
	}

	dir := filepath.Join(req.DataRoot, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create category directory: %w", err)
	}
	logger.Info("saving entries", logging.String("directory", dir), logging.Int("entries", len(videos)))

	metaPath := filepath.Join(dir, d.metadataFile)
	previous, err := metadata.Load(metaPath)
	if err != nil {
		logger.Warn("existing metadata unreadable; starting fresh", logging.Error(err))
		previous = nil
	}
	known := metadata.Index(previous)

	result := Result{Directory: dir, Category: category}
	collected := make([]metadata.Entry, 0, len(videos))
	for position, video := range videos {
		entry, downloaded, err := d.collect(ctx, logger, req, dir, video, known)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Skipped++
			logger.Warn("skipping entry",
				logging.Int("position", position+1),
				logging.Error(err),
			)
			continue
		}
		if downloaded {
			result.Downloaded++
		}
		collected = append(collected, entry)
	}

	if len(collected) == 0 {
		return result, fmt.Errorf("no entries could be downloaded from %s", url)
	}
	merged := metadata.Merge(collected, previous)
	if err := metadata.Save(metaPath, merged); err != nil {
		return result, err
	}
	result.Entries = len(merged)
	logger.Info("metadata written",
		logging.String("path", metaPath),
		logging.Int("entries", result.Entries),
		logging.Int("downloaded", result.Downloaded),
		logging.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (d *Downloader) probe(ctx context.Context, logger *slog.Logger, req Request, url string) (*videoInfo, error) {
	args := []string{"-J", "--no-warnings", "--ignore-errors"}
	if req.NoPlaylist {
		args = append(args, "--no-playlist")
	}
	args = append(args, d.cookieArgs(req)...)
	args = append(args, url)

	out, err := d.exec.Output(ctx, d.binary, args, func(line string) {
		logger.Debug(line, logging.String("source", "yt-dlp"))
	})
	if err != nil {
		return nil, fmt.Errorf("fetch details for %s: %w", url, err)
	}
	return parseInfo(out)
}

// collect ensures audio and thumbnail exist for one video and returns its
// metadata entry. downloaded reports whether anything new was fetched.
func (d *Downloader) collect(ctx context.Context, logger *slog.Logger, req Request, dir string, video *videoInfo, known map[string]metadata.Entry) (metadata.Entry, bool, error) {
	if video == nil {
		return metadata.Entry{}, false, errors.New("no data returned")
	}
	id := strings.TrimSpace(video.ID)
	if id == "" {
		return metadata.Entry{}, false, errors.New("missing video ID")
	}
	pageURL := video.pageURL()
	if pageURL == "" {
		return metadata.Entry{}, false, fmt.Errorf("%s: missing URL", id)
	}

	audioPath := filepath.Join(dir, id+"."+d.audioFormat)
	thumbPath := filepath.Join(dir, id+".jpg")
	entry := metadata.Entry{ID: id, Title: video.Title, Description: video.Description}
	if existing, ok := known[id]; ok && entry.Title == "" {
		entry = existing
	}

	downloaded := false
	if fileExists(audioPath) {
		logger.Info("audio already present", logging.String("video_id", id))
	} else {
		logger.Info("downloading audio", logging.String("video_id", id))
		if err := d.exec.Run(ctx, d.binary, d.audioArgs(req, dir, pageURL), func(line string) {
			logger.Debug(line, logging.String("source", "yt-dlp"), logging.String("video_id", id))
		}); err != nil {
			return metadata.Entry{}, false, fmt.Errorf("%s: download audio: %w", id, err)
		}
		downloaded = true
	}

	if fileExists(thumbPath) {
		logger.Info("thumbnail already present", logging.String("video_id", id))
	} else {
		logger.Info("downloading thumbnail", logging.String("video_id", id))
		if err := d.fetchThumbnail(ctx, id, thumbPath); err != nil {
			return metadata.Entry{}, false, fmt.Errorf("%s: %w", id, err)
		}
		downloaded = true
	}
	return entry, downloaded, nil
}

func (d *Downloader) audioArgs(req Request, dir, pageURL string) []string {
	args := []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", d.audioFormat,
	}
	if q := audioQualityArg(d.audioQuality); q != "" {
		args = append(args, "--audio-quality", q)
	}
	args = append(args,
		"--no-playlist",
		"--no-overwrites",
		"--no-progress",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
	)
	args = append(args, d.cookieArgs(req)...)
	return append(args, pageURL)
}

// audioQualityArg turns a bare bitrate ("320") into yt-dlp's "320K" form.
// VBR levels 0-10 and values with a unit pass through unchanged.
func audioQualityArg(quality string) string {
	quality = strings.TrimSpace(quality)
	n, err := strconv.Atoi(quality)
	if err != nil || n <= 10 {
		return quality
	}
	return quality + "K"
}

func (d *Downloader) cookieArgs(req Request) []string {
	if req.CookiesFile == "" {
		return nil
	}
	return []string{"--cookies", req.CookiesFile}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
