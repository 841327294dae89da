package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"yt2wp/internal/credentials"
)

const userAgent = "yt2wp/0.1.0"

// HTTPDoer describes the HTTP client used by the WordPress client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is returned for any response with status >= 400.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Body)
}

// Media is the subset of a media library item yt2wp reads.
type Media struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

// Category is a post category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Post is the payload for creating a post.
type Post struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Status     string `json:"status"`
	Categories []int  `json:"categories"`
}

// User is the subset of the authenticated user yt2wp reads.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreatedPost is the subset of a created post yt2wp reads.
type CreatedPost struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

// Client talks to one WordPress site.
type Client struct {
	apiBase  string
	username string
	password string
	http     HTTPDoer
}

// NewClient builds a client from validated credentials. A nil doer gets an
// http.Client with the given timeout.
func NewClient(creds credentials.Credentials, timeout time.Duration, doer HTTPDoer) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if doer == nil {
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiBase:  creds.APIBase(),
		username: creds.Username,
		password: creds.AppPassword,
		http:     doer,
	}, nil
}

// CurrentUser returns the account the application password authenticates as.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return User{}, err
	}
	var user User
	if err := c.do(req, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// UploadMedia streams a file into the media library.
func (c *Client) UploadMedia(ctx context.Context, path, mimeType string) (Media, error) {
	file, err := os.Open(path)
	if err != nil {
		return Media{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	name := filepath.Base(path)
	req, err := c.newRequest(ctx, http.MethodPost, "/media", file)
	if err != nil {
		return Media{}, err
	}
	if info, err := file.Stat(); err == nil {
		req.ContentLength = info.Size()
	}
	req.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Slug", strings.TrimSuffix(name, filepath.Ext(name)))

	var media Media
	if err := c.do(req, &media); err != nil {
		return Media{}, err
	}
	return media, nil
}

// UpdateMedia sets fields such as title and alt_text on a media item.
func (c *Client) UpdateMedia(ctx context.Context, id int, fields map[string]string) error {
	return c.postJSON(ctx, "/media/"+strconv.Itoa(id), fields, nil)
}

// EnsureCategory returns the ID of the category whose name matches
// case-insensitively, creating it when none does.
func (c *Client) EnsureCategory(ctx context.Context, name string) (int, error) {
	query := url.Values{}
	query.Set("search", name)
	query.Set("per_page", "100")
	req, err := c.newRequest(ctx, http.MethodGet, "/categories?"+query.Encode(), nil)
	if err != nil {
		return 0, err
	}
	var existing []Category
	if err := c.do(req, &existing); err != nil {
		return 0, fmt.Errorf("list categories for %q: %w", name, err)
	}
	for _, category := range existing {
		if strings.EqualFold(html.UnescapeString(category.Name), name) {
			return category.ID, nil
		}
	}

	var created Category
	if err := c.postJSON(ctx, "/categories", map[string]string{"name": name}, &created); err != nil {
		return 0, fmt.Errorf("create category %q: %w", name, err)
	}
	if created.ID <= 0 {
		return 0, fmt.Errorf("create category %q: response carried no id", name)
	}
	return created.ID, nil
}

// CreatePost creates a post.
func (c *Client) CreatePost(ctx context.Context, post Post) (CreatedPost, error) {
	var created CreatedPost
	if err := c.postJSON(ctx, "/posts", post, &created); err != nil {
		return CreatedPost{}, fmt.Errorf("create post %q: %w", post.Title, err)
	}
	return created, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
	if err != nil {
		return nil, fmt.Errorf("build wordpress request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			Method: req.Method,
			Path:   req.URL.Path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
