package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"yt2wp/internal/notifications"
	"yt2wp/internal/services"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) count(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type stubDownloader struct {
	rec      *recorder
	dataRoot string
	failures int // number of leading attempts that fail; -1 fails forever
	calls    int
}

func (d *stubDownloader) Download(_ context.Context, url, label string) error {
	d.calls++
	d.rec.add("download " + url + " " + label)
	if d.failures < 0 || d.calls <= d.failures {
		return errors.New("yt-dlp exited with status 1")
	}
	dir := filepath.Join(d.dataRoot, "my-playlist")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "video123.mp3"), []byte("audio"), 0o644)
}

type stubUploader struct {
	rec *recorder
	err error
}

func (u *stubUploader) Upload(_ context.Context, dir, envFile string) error {
	u.rec.add("upload " + dir + " " + envFile)
	return u.err
}

type stubPublisher struct {
	rec *recorder
	err error
}

func (p *stubPublisher) Publish(_ context.Context, category, envFile string) error {
	p.rec.add("publish " + category + " " + envFile)
	return p.err
}

type stubNotifier struct {
	events []notifications.Event
	err    error
}

func (n *stubNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	n.events = append(n.events, event)
	return n.err
}

type fixture struct {
	dataRoot   string
	envFile    string
	rec        *recorder
	downloader *stubDownloader
	uploader   *stubUploader
	publisher  *stubPublisher
	notifier   *stubNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	envFile := filepath.Join(base, ".env")
	if err := os.WriteFile(envFile, []byte("WP_BASE_URL=https://example.org\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	dataRoot := filepath.Join(base, "data")
	return &fixture{
		dataRoot:   dataRoot,
		envFile:    envFile,
		rec:        rec,
		downloader: &stubDownloader{rec: rec, dataRoot: dataRoot},
		uploader:   &stubUploader{rec: rec},
		publisher:  &stubPublisher{rec: rec},
		notifier:   &stubNotifier{},
	}
}

func (f *fixture) orchestrator(t *testing.T, mutate ...func(*Options)) *Orchestrator {
	t.Helper()
	opts := Options{
		DataRoot:   f.dataRoot,
		EnvFiles:   []string{filepath.Join(filepath.Dir(f.envFile), "missing.env"), f.envFile},
		Downloader: f.downloader,
		Uploader:   f.uploader,
		Publisher:  f.publisher,
		Notifier:   f.notifier,
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	o, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	o.wait = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return o
}

func (f *fixture) populate(t *testing.T, name string, files ...string) string {
	t.Helper()
	dir := filepath.Join(f.dataRoot, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		if err := os.WriteFile(filepath.Join(dir, file), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func requireMarker(t *testing.T, err, marker error, stage Stage) {
	t.Helper()
	if !errors.Is(err, marker) {
		t.Fatalf("expected %v, got %v", marker, err)
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected *StageError, got %T", err)
	}
	if stageErr.Stage != stage {
		t.Fatalf("expected failure at %s, got %s", stage, stageErr.Stage)
	}
}

func TestEndToEndSuccess(t *testing.T) {
	f := newFixture(t)
	o := f.orchestrator(t)

	report, err := o.Run(context.Background(), Job{SourceURL: "https://example/video123", Label: "My Playlist!"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantDir := filepath.Join(f.dataRoot, "my-playlist")
	want := []string{
		"download https://example/video123 My Playlist!",
		"upload " + wantDir + " " + f.envFile,
		"publish my-playlist " + f.envFile,
	}
	if strings.Join(f.rec.calls, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected calls:\n%s", strings.Join(f.rec.calls, "\n"))
	}
	if report.Stage != StageDone || report.Category != "my-playlist" || report.Directory != wantDir {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Files != 1 || len(report.Attempts) != 1 || report.RunID == "" {
		t.Fatalf("unexpected report details %+v", report)
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0] != notifications.EventRunCompleted {
		t.Fatalf("expected run_completed notification, got %v", f.notifier.events)
	}
	if services.ExitCode(err) != services.ExitOK {
		t.Fatal("expected exit 0")
	}
}

func TestBlankSanitizedLabelFailsBeforeAnyIO(t *testing.T) {
	f := newFixture(t)
	o := f.orchestrator(t)

	for _, label := range []string{"", "   ", "!!!", "/../"} {
		_, err := o.Run(context.Background(), Job{SourceURL: "https://example/v", Label: label})
		requireMarker(t, err, services.ErrInput, StageValidated)
	}
	if len(f.rec.calls) != 0 {
		t.Fatalf("expected no collaborator calls, got %v", f.rec.calls)
	}
	if _, err := os.Stat(f.dataRoot); !os.IsNotExist(err) {
		t.Fatalf("data root should not be touched, stat err=%v", err)
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("input errors should not notify, got %v", f.notifier.events)
	}
}

func TestBlankURLIsInputErrorUnlessSkipping(t *testing.T) {
	f := newFixture(t)
	o := f.orchestrator(t)

	_, err := o.Run(context.Background(), Job{SourceURL: " ", Label: "talks"})
	requireMarker(t, err, services.ErrInput, StageValidated)

	f.populate(t, "talks", "a.mp3")
	if _, err := o.Run(context.Background(), Job{Label: "talks", SkipDownload: true}); err != nil {
		t.Fatalf("skip-download without URL should run: %v", err)
	}
}

func TestDownloadRetriesUntilSuccess(t *testing.T) {
	f := newFixture(t)
	f.downloader.failures = 2
	o := f.orchestrator(t)

	report, err := o.Run(context.Background(), Job{SourceURL: "https://example/v", Label: "My Playlist!"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.downloader.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", f.downloader.calls)
	}
	if len(report.Attempts) != 3 || report.Attempts[0].Succeeded() || report.Attempts[1].Succeeded() || !report.Attempts[2].Succeeded() {
		t.Fatalf("unexpected attempts %+v", report.Attempts)
	}
	if f.rec.count("upload") != 1 || f.rec.count("publish") != 1 {
		t.Fatalf("expected run to proceed, calls %v", f.rec.calls)
	}
}

func TestDownloadExhaustionAborts(t *testing.T) {
	f := newFixture(t)
	f.downloader.failures = -1
	f.populate(t, "my-playlist", "stale.mp3")
	o := f.orchestrator(t)

	report, err := o.Run(context.Background(), Job{SourceURL: "https://example/v", Label: "My Playlist!"})
	requireMarker(t, err, services.ErrDownload, StageDownloaded)
	if f.downloader.calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", f.downloader.calls)
	}
	if f.rec.count("upload") != 0 || f.rec.count("publish") != 0 {
		t.Fatalf("run must not continue after exhaustion: %v", f.rec.calls)
	}
	if report.Stage != StageFailed || report.Files != 0 {
		t.Fatalf("verification must not run: %+v", report)
	}
	if services.ExitCode(err) != services.ExitDownload {
		t.Fatalf("expected download exit code, got %d", services.ExitCode(err))
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0] != notifications.EventRunFailed {
		t.Fatalf("expected run_failed notification, got %v", f.notifier.events)
	}
}

func TestDownloadAttemptsAreClamped(t *testing.T) {
	cases := []struct {
		configured int
		want       int
	}{
		{configured: 0, want: 3},
		{configured: 1, want: 1},
		{configured: 2, want: 2},
		{configured: 9, want: 3},
	}
	for _, tc := range cases {
		f := newFixture(t)
		f.downloader.failures = -1
		o := f.orchestrator(t, func(opts *Options) { opts.DownloadAttempts = tc.configured })
		_, _ = o.Run(context.Background(), Job{SourceURL: "u", Label: "x"})
		if f.downloader.calls != tc.want {
			t.Fatalf("configured %d: expected %d attempts, got %d", tc.configured, tc.want, f.downloader.calls)
		}
	}
}

func TestCancellationStopsRetrying(t *testing.T) {
	f := newFixture(t)
	f.downloader.failures = -1
	o := f.orchestrator(t, func(opts *Options) { opts.RetryDelay = time.Hour })
	o.wait = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := o.Run(ctx, Job{SourceURL: "u", Label: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if errors.Is(err, services.ErrDownload) {
		t.Fatal("cancellation must not be reported as exhaustion")
	}
	if f.downloader.calls != 1 {
		t.Fatalf("expected a single attempt before cancellation, got %d", f.downloader.calls)
	}
}

func TestSkipDownloadWithPopulatedDirectory(t *testing.T) {
	f := newFixture(t)
	f.populate(t, "my-playlist", "a.mp3", "a.jpg")
	o := f.orchestrator(t)

	report, err := o.Run(context.Background(), Job{Label: "My Playlist!", SkipDownload: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.downloader.calls != 0 {
		t.Fatalf("downloader must not run, got %d calls", f.downloader.calls)
	}
	if f.rec.count("upload") != 1 || report.Files != 2 {
		t.Fatalf("expected upload of 2 files, calls %v report %+v", f.rec.calls, report)
	}
}

func TestEmptyDirectoryFails(t *testing.T) {
	f := newFixture(t)
	dir := f.populate(t, "my-playlist")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	o := f.orchestrator(t)

	_, err := o.Run(context.Background(), Job{Label: "My Playlist!", SkipDownload: true})
	requireMarker(t, err, services.ErrEmptyData, StageDirectoryVerified)
	if f.rec.count("upload") != 0 {
		t.Fatal("uploader must not run for an empty directory")
	}
	if services.ExitCode(err) != services.ExitData {
		t.Fatalf("expected data exit code, got %d", services.ExitCode(err))
	}
}

func TestMissingDirectoryFails(t *testing.T) {
	f := newFixture(t)
	f.populate(t, "other", "a.mp3")
	o := f.orchestrator(t)

	_, err := o.Run(context.Background(), Job{Label: "My Playlist!", SkipDownload: true})
	requireMarker(t, err, services.ErrMissingData, StageDirectoryVerified)
	if f.rec.count("upload") != 0 {
		t.Fatal("uploader must not run")
	}
}

func TestAmbiguousDirectoriesFailLoud(t *testing.T) {
	f := newFixture(t)
	first := f.populate(t, "my-playlist", "a.mp3")
	second := f.populate(t, "My Playlist", "b.mp3")
	o := f.orchestrator(t)

	_, err := o.Run(context.Background(), Job{Label: "My Playlist!", SkipDownload: true})
	requireMarker(t, err, services.ErrAmbiguousData, StageDirectoryVerified)

	var ambiguous *AmbiguousDirectoryError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected *AmbiguousDirectoryError, got %v", err)
	}
	if len(ambiguous.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %v", ambiguous.Candidates)
	}
	for _, dir := range []string{first, second} {
		if !strings.Contains(err.Error(), dir) {
			t.Fatalf("expected %s listed in %v", dir, err)
		}
	}
	if f.rec.count("upload") != 0 || f.rec.count("publish") != 0 {
		t.Fatalf("no collaborator may run: %v", f.rec.calls)
	}
}

func TestSingleMismatchedCandidateIsAmbiguous(t *testing.T) {
	f := newFixture(t)
	f.populate(t, "My Playlist", "a.mp3")
	o := f.orchestrator(t)

	_, err := o.Run(context.Background(), Job{Label: "My Playlist!", SkipDownload: true})
	requireMarker(t, err, services.ErrAmbiguousData, StageDirectoryVerified)
}

func TestMissingCredentialsIsPrerequisiteError(t *testing.T) {
	f := newFixture(t)
	if err := os.Remove(f.envFile); err != nil {
		t.Fatal(err)
	}
	o := f.orchestrator(t)

	_, err := o.Run(context.Background(), Job{SourceURL: "u", Label: "x"})
	requireMarker(t, err, services.ErrPrerequisite, StageValidated)
	if len(f.rec.calls) != 0 {
		t.Fatalf("no collaborator may run: %v", f.rec.calls)
	}
	if services.ExitCode(err) != services.ExitPrerequisite {
		t.Fatalf("expected prerequisite exit code, got %d", services.ExitCode(err))
	}
}

func TestHeldLockIsPrerequisiteError(t *testing.T) {
	f := newFixture(t)
	if err := os.MkdirAll(f.dataRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	held := flock.New(filepath.Join(f.dataRoot, LockFileName))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	o := f.orchestrator(t)
	_, err = o.Run(context.Background(), Job{SourceURL: "u", Label: "x"})
	requireMarker(t, err, services.ErrPrerequisite, StageValidated)
	if f.downloader.calls != 0 {
		t.Fatal("downloader must not run while another run holds the lock")
	}
}

func TestUploadFailureStopsBeforePublish(t *testing.T) {
	f := newFixture(t)
	f.populate(t, "x", "a.mp3")
	f.uploader.err = errors.New("uploader exited with status 1")
	o := f.orchestrator(t)

	_, err := o.Run(context.Background(), Job{Label: "x", SkipDownload: true})
	requireMarker(t, err, services.ErrUpload, StageUploaded)
	if f.rec.count("upload") != 1 || f.rec.count("publish") != 0 {
		t.Fatalf("expected one upload and no publish: %v", f.rec.calls)
	}
}

func TestPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.populate(t, "x", "a.mp3")
	f.publisher.err = errors.New("publisher exited with status 1")
	o := f.orchestrator(t)

	_, err := o.Run(context.Background(), Job{Label: "x", SkipDownload: true})
	requireMarker(t, err, services.ErrPublish, StagePublished)
	if services.ExitCode(err) != services.ExitPublish {
		t.Fatalf("expected publish exit code, got %d", services.ExitCode(err))
	}
}

func TestNotificationFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.populate(t, "x", "a.mp3")
	f.notifier.err = errors.New("ntfy unreachable")
	o := f.orchestrator(t)

	if _, err := o.Run(context.Background(), Job{Label: "x", SkipDownload: true}); err != nil {
		t.Fatalf("notification failure must not fail the run: %v", err)
	}
}

func TestLockIsReleasedAfterRun(t *testing.T) {
	f := newFixture(t)
	f.populate(t, "x", "a.mp3")
	o := f.orchestrator(t)

	for i := 0; i < 2; i++ {
		if _, err := o.Run(context.Background(), Job{Label: "x", SkipDownload: true}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Options{DataRoot: "data", EnvFiles: []string{".env"}}); err == nil {
		t.Fatal("expected error without collaborators")
	}
}
