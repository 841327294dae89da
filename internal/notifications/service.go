package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"yt2wp/internal/config"
)

const userAgent = "yt2wp/0.1.0"

// Event identifies a notification kind.
type Event string

const (
	EventRunStarted   Event = "run_started"
	EventRunCompleted Event = "run_completed"
	EventRunFailed    Event = "run_failed"
	EventTest         Event = "test"
)

// Payload carries event-specific values keyed by name.
type Payload map[string]any

// Service publishes events. Implementations must be safe to call with a nil
// or partially filled payload.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

// render maps an event to its ntfy message. Events that are not worth a push
// report ok=false.
func render(event Event, payload Payload) (message, bool) {
	switch event {
	case EventRunCompleted:
		label := payload.text("label")
		body := fmt.Sprintf("✅ Published: %s", label)
		if category := payload.text("category"); category != "" && category != label {
			body = fmt.Sprintf("%s (category %s)", body, category)
		}
		if d, ok := payload["duration"].(time.Duration); ok && d > 0 {
			body = fmt.Sprintf("%s in %s", body, d.Round(time.Second))
		}
		return message{
			title: "yt2wp - Run Complete",
			body:  body,
			tags:  []string{"yt2wp", "run", "completed"},
		}, true
	case EventRunFailed:
		var b strings.Builder
		b.WriteString("❌ Run failed")
		if stage := payload.text("stage"); stage != "" {
			b.WriteString(" during ")
			b.WriteString(stage)
		}
		if label := payload.text("label"); label != "" {
			b.WriteString(" for ")
			b.WriteString(label)
		}
		b.WriteString(": ")
		if errText := payload.text("error"); errText != "" {
			b.WriteString(errText)
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "yt2wp - Run Failed",
			body:     b.String(),
			tags:     []string{"yt2wp", "run", "failed"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "yt2wp - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"yt2wp", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (p Payload) text(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
