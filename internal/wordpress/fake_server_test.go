package wordpress

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"yt2wp/internal/credentials"
)

type uploadedMedia struct {
	filename    string
	contentType string
	slug        string
	body        string
}

// fakeSite is a minimal in-memory WordPress REST API.
type fakeSite struct {
	t          *testing.T
	mu         sync.Mutex
	nextID     int
	media      []uploadedMedia
	updates    map[int]map[string]string
	categories []Category
	posts      []Post
	created    []string
	failUpload map[string]bool
	failPosts  bool
}

func newFakeSite(t *testing.T) (*fakeSite, *httptest.Server) {
	t.Helper()
	site := &fakeSite{t: t, nextID: 100, updates: map[int]map[string]string{}, failUpload: map[string]bool{}}
	server := httptest.NewServer(site)
	t.Cleanup(server.Close)
	return site, server
}

func (s *fakeSite) client(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(credentials.Credentials{
		BaseURL:     server.URL,
		Username:    "editor",
		AppPassword: "app pass",
	}, 5*time.Second, server.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, pass, ok := r.BasicAuth()
	if !ok || user != "editor" || pass != "app pass" {
		http.Error(w, `{"code":"rest_not_logged_in"}`, http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/wp-json/wp/v2")
	switch {
	case r.Method == http.MethodGet && path == "/users/me":
		writeJSON(w, User{ID: 7, Name: "editor"})
	case r.Method == http.MethodPost && path == "/media":
		body, _ := io.ReadAll(r.Body)
		m := uploadedMedia{
			filename:    r.Header.Get("Content-Disposition"),
			contentType: r.Header.Get("Content-Type"),
			slug:        r.Header.Get("Slug"),
			body:        string(body),
		}
		if s.failUpload[m.slug+"|"+m.contentType] {
			http.Error(w, "disk full", http.StatusInternalServerError)
			return
		}
		s.media = append(s.media, m)
		s.nextID++
		writeJSON(w, map[string]any{"id": s.nextID, "source_url": "https://cdn/" + m.slug})
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/media/"):
		id, _ := strconv.Atoi(strings.TrimPrefix(path, "/media/"))
		var fields map[string]string
		_ = json.NewDecoder(r.Body).Decode(&fields)
		s.updates[id] = fields
		writeJSON(w, map[string]any{"id": id})
	case r.Method == http.MethodGet && path == "/categories":
		search := strings.ToLower(r.URL.Query().Get("search"))
		if r.URL.Query().Get("per_page") != "100" {
			s.t.Errorf("expected per_page=100, got %q", r.URL.RawQuery)
		}
		var out []Category
		for _, c := range s.categories {
			if strings.Contains(strings.ToLower(c.Name), search) {
				out = append(out, c)
			}
		}
		if out == nil {
			out = []Category{}
		}
		writeJSON(w, out)
	case r.Method == http.MethodPost && path == "/categories":
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		s.nextID++
		c := Category{ID: s.nextID, Name: payload["name"]}
		s.categories = append(s.categories, c)
		s.created = append(s.created, c.Name)
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, c)
	case r.Method == http.MethodPost && path == "/posts":
		if s.failPosts {
			http.Error(w, "nope", http.StatusForbidden)
			return
		}
		var post Post
		_ = json.NewDecoder(r.Body).Decode(&post)
		s.posts = append(s.posts, post)
		s.nextID++
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]any{"id": s.nextID, "link": "https://site/?p=" + strconv.Itoa(s.nextID)})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
