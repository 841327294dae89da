package pipeline

import "time"

// Stage names a position in the run state machine.
type Stage string

const (
	StageInit              Stage = "init"
	StageValidated         Stage = "validated"
	StageDownloaded        Stage = "downloaded"
	StageDirectoryVerified Stage = "directory_verified"
	StageUploaded          Stage = "uploaded"
	StagePublished         Stage = "published"
	StageDone              Stage = "done"
	StageFailed            Stage = "failed"
)

// Step names used for logging and error context. Each step moves the run to
// the Stage of the same meaning.
const (
	stepValidate      = "validate"
	stepPrerequisites = "prerequisites"
	stepDownload      = "download"
	stepVerify        = "verify"
	stepUpload        = "upload"
	stepPublish       = "publish"
)

// Job is the immutable input of one run.
type Job struct {
	SourceURL    string
	Label        string
	SkipDownload bool
}

// Attempt records one downloader invocation.
type Attempt struct {
	Number int
	Err    error
}

// Succeeded reports whether the attempt exited cleanly.
func (a Attempt) Succeeded() bool { return a.Err == nil }

// Report summarizes a run, whether it succeeded or not.
type Report struct {
	RunID     string
	Category  string
	Directory string
	EnvFile   string
	// Stage is the last stage reached: StageDone on success, StageFailed
	// otherwise. FailedAt holds the stage that was being entered.
	Stage    Stage
	FailedAt Stage
	Attempts []Attempt
	Files    int
	Duration time.Duration
}
