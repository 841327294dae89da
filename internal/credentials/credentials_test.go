package credentials_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yt2wp/internal/credentials"
	"yt2wp/internal/services"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestResolvePrefersFirstExistingCandidate(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, "wp.env", "WP_BASE_URL=https://b\n")

	got, err := credentials.Resolve([]string{".env", "wp.env"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Base(got) != "wp.env" || !filepath.IsAbs(got) {
		t.Fatalf("expected absolute wp.env, got %q", got)
	}

	writeFile(t, ".env", "WP_BASE_URL=https://a\n")
	got, err = credentials.Resolve([]string{".env", "wp.env"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Base(got) != ".env" {
		t.Fatalf("expected .env to take precedence, got %q", got)
	}
}

func TestResolveMissingIsPrerequisiteError(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.Mkdir(".env", 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := credentials.Resolve([]string{".env", "wp.env"})
	if !errors.Is(err, services.ErrPrerequisite) {
		t.Fatalf("expected prerequisite error, got %v", err)
	}
	if !strings.Contains(err.Error(), "wp.env") {
		t.Fatalf("expected candidates in message, got %v", err)
	}
}

func TestLoadParsesKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, strings.Join([]string{
		"# site",
		"WP_BASE_URL=https://example.org/",
		"WP_USERNAME=editor",
		`WP_APP_PASSWORD="abcd efgh ijkl"`,
		"WP_UPLOADS_PATH=/wp-content/uploads/custom/",
		"",
	}, "\n"))

	creds, err := credentials.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := creds.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if creds.BaseURL != "https://example.org" {
		t.Fatalf("unexpected base url %q", creds.BaseURL)
	}
	if creds.AppPassword != "abcd efgh ijkl" {
		t.Fatalf("unexpected password %q", creds.AppPassword)
	}
	if got := creds.APIBase(); got != "https://example.org/wp-json/wp/v2" {
		t.Fatalf("unexpected api base %q", got)
	}
	if got := creds.MediaBase("wp-content/uploads/default"); got != "https://example.org/wp-content/uploads/custom" {
		t.Fatalf("unexpected media base %q", got)
	}
	if _, ok := os.LookupEnv("WP_APP_PASSWORD"); ok {
		t.Fatal("credentials must not be exported into the environment")
	}
}

func TestMediaBasePrecedence(t *testing.T) {
	creds := credentials.Credentials{BaseURL: "https://site"}
	if got := creds.MediaBase("/wp-content/uploads/x/"); got != "https://site/wp-content/uploads/x" {
		t.Fatalf("unexpected default media base %q", got)
	}
	creds.MediaBaseURL = "https://cdn.example"
	if got := creds.MediaBase("ignored"); got != "https://cdn.example" {
		t.Fatalf("expected MEDIA_BASE_URL to win, got %q", got)
	}
}

func TestValidateListsMissingKeys(t *testing.T) {
	err := credentials.Credentials{BaseURL: "https://site"}.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, key := range []string{credentials.KeyUsername, credentials.KeyAppPassword} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %v", key, err)
		}
	}
}
