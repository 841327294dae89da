// Package credentials resolves and parses the WordPress key-value credentials
// file. Values are returned as an explicit Credentials value and never
// exported into the process environment.
package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/subosito/gotenv"

	"yt2wp/internal/services"
)

// Recognized keys.
const (
	KeyBaseURL      = "WP_BASE_URL"
	KeyUsername     = "WP_USERNAME"
	KeyAppPassword  = "WP_APP_PASSWORD"
	KeyUploadsPath  = "WP_UPLOADS_PATH"
	KeyMediaBaseURL = "MEDIA_BASE_URL"
)

// Credentials holds the WordPress site and application password.
type Credentials struct {
	BaseURL      string
	Username     string
	AppPassword  string
	UploadsPath  string
	MediaBaseURL string
}

// Resolve returns the first candidate that exists as a regular file. Relative
// candidates are resolved against the working directory. When none exist the
// error is marked services.ErrPrerequisite.
func Resolve(candidates []string) (string, error) {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", services.Wrap(services.ErrPrerequisite, "prerequisites", "Resolve credentials", candidate, err)
		}
		if info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", services.Wrap(services.ErrPrerequisite, "prerequisites", "Resolve credentials", candidate, err)
		}
		return abs, nil
	}
	return "", services.Wrap(
		services.ErrPrerequisite,
		"prerequisites",
		"Resolve credentials",
		fmt.Sprintf("no credentials file found (looked for %s)", strings.Join(candidates, ", ")),
		nil,
	)
}

// Load parses a credentials file. Missing required keys are not an error
// here; call Validate before talking to WordPress.
func Load(path string) (Credentials, error) {
	file, err := os.Open(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("open credentials file: %w", err)
	}
	defer file.Close()

	env, err := gotenv.StrictParse(file)
	if err != nil {
		return Credentials{}, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	return fromEnv(env), nil
}

func fromEnv(env gotenv.Env) Credentials {
	get := func(key string) string { return strings.TrimSpace(env[key]) }
	return Credentials{
		BaseURL:      strings.TrimRight(get(KeyBaseURL), "/"),
		Username:     get(KeyUsername),
		AppPassword:  get(KeyAppPassword),
		UploadsPath:  strings.Trim(get(KeyUploadsPath), "/"),
		MediaBaseURL: strings.TrimRight(get(KeyMediaBaseURL), "/"),
	}
}

// Validate reports every missing required key.
func (c Credentials) Validate() error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, KeyBaseURL)
	}
	if c.Username == "" {
		missing = append(missing, KeyUsername)
	}
	if c.AppPassword == "" {
		missing = append(missing, KeyAppPassword)
	}
	if len(missing) > 0 {
		return fmt.Errorf("credentials missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// APIBase returns the REST API root for the configured site.
func (c Credentials) APIBase() string {
	return c.BaseURL + "/wp-json/wp/v2"
}

// MediaBase returns the public URL prefix for uploaded media. MEDIA_BASE_URL
// wins; otherwise the site URL is joined with the uploads path, where
// WP_UPLOADS_PATH overrides the configured default.
func (c Credentials) MediaBase(defaultUploadsPath string) string {
	if c.MediaBaseURL != "" {
		return c.MediaBaseURL
	}
	uploads := c.UploadsPath
	if uploads == "" {
		uploads = strings.Trim(defaultUploadsPath, "/")
	}
	if uploads == "" {
		return c.BaseURL
	}
	return c.BaseURL + "/" + uploads
}
