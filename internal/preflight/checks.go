package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"yt2wp/internal/config"
	"yt2wp/internal/credentials"
	"yt2wp/internal/deps"
	"yt2wp/internal/wordpress"
)

const wordpressCheckTimeout = 10 * time.Second

// CheckCredentials resolves the first existing credentials file and verifies
// that it carries every required key.
func CheckCredentials(candidates []string) (credentials.Credentials, Result) {
	const name = "Credentials"

	path, err := credentials.Resolve(candidates)
	if err != nil {
		return credentials.Credentials{}, Result{Name: name, Detail: fmt.Sprintf("not found (looked for %s)", strings.Join(candidates, ", "))}
	}
	creds, err := credentials.Load(path)
	if err != nil {
		return credentials.Credentials{}, Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if err := creds.Validate(); err != nil {
		return creds, Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return creds, Result{Name: name, Passed: true, Detail: path}
}

// CheckWordPress verifies that the REST API is reachable and that the
// application password authenticates. A nil doer uses a short-lived client.
func CheckWordPress(ctx context.Context, creds credentials.Credentials, doer wordpress.HTTPDoer) Result {
	const name = "WordPress"

	checkCtx, cancel := context.WithTimeout(ctx, wordpressCheckTimeout)
	defer cancel()

	client, err := wordpress.NewClient(creds, wordpressCheckTimeout, doer)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	user, err := client.CurrentUser(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeWordPressError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (authenticated as %s)", creds.BaseURL, user.Name)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFileReadable verifies that a regular file exists and can be read.
func CheckFileReadable(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckSystemDeps evaluates the binaries the built-in downloader needs plus
// any collaborator program that is not yt2wp itself.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Downloader.YtdlpBinary,
			Description: "Required for playlist download",
		},
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Required for audio extraction",
		},
		{
			Name:        "FFprobe",
			Command:     "ffprobe",
			Description: "Used by yt-dlp to inspect extracted audio",
			Optional:    true,
		},
	}
	collaborators := []struct {
		name string
		argv []string
	}{
		{"Downloader command", cfg.Commands.Downloader},
		{"Uploader command", cfg.Commands.Uploader},
		{"Publisher command", cfg.Commands.Publisher},
	}
	for _, c := range collaborators {
		if len(c.argv) == 0 || c.argv[0] == config.PlaceholderSelf {
			continue
		}
		requirements = append(requirements, deps.Requirement{
			Name:        c.name,
			Command:     c.argv[0],
			Description: "Configured collaborator program",
		})
	}
	return deps.CheckBinaries(requirements)
}

func summarizeWordPressError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (WordPress unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (WordPress unreachable)"
	}
	var apiErr *wordpress.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "auth failed (check WP_USERNAME and WP_APP_PASSWORD)"
		case http.StatusNotFound:
			return "REST API not found (check WP_BASE_URL)"
		default:
			return fmt.Sprintf("auth check failed (%d)", apiErr.Status)
		}
	}
	return err.Error()
}
