package config

const (
	defaultDataRoot            = "data"
	defaultLogDir              = "~/.local/share/yt2wp/logs"
	defaultDownloadAttempts    = 3
	defaultRetryDelaySeconds   = 5
	defaultYtdlpBinary         = "yt-dlp"
	defaultMetadataFile        = "playlist_metadata.json"
	defaultAudioFormat         = "mp3"
	defaultAudioQuality        = "320"
	defaultThumbnailBaseURL    = "https://i.ytimg.com/vi"
	defaultUploadsPath         = "wp-content/uploads/2025/youtube2wordpress"
	defaultPostStatus          = "draft"
	defaultPlayerSkip          = 15
	defaultWordPressTimeout    = 120
	defaultNotificationTimeout = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// MaxDownloadAttempts is the ceiling for downloader attempts within one run.
const MaxDownloadAttempts = 3

// Placeholders recognized in collaborator argv templates.
const (
	PlaceholderSelf     = "{self}"
	PlaceholderConfig   = "{config}"
	PlaceholderURL      = "{url}"
	PlaceholderLabel    = "{label}"
	PlaceholderDir      = "{dir}"
	PlaceholderCategory = "{category}"
	PlaceholderEnvFile  = "{env_file}"
	PlaceholderDataRoot = "{data_root}"
)

// PostStatuses lists the WordPress post statuses the publisher accepts.
var PostStatuses = []string{"draft", "publish", "pending", "future", "private"}

func defaultEnvFiles() []string {
	return []string{".env", "wp.env"}
}

func defaultDownloaderCommand() []string {
	return []string{PlaceholderSelf, "download", "--config=" + PlaceholderConfig, "--data-root", PlaceholderDataRoot, PlaceholderURL, PlaceholderLabel}
}

func defaultUploaderCommand() []string {
	return []string{PlaceholderSelf, "upload", "--config=" + PlaceholderConfig, "--env-file", PlaceholderEnvFile, PlaceholderDir}
}

func defaultPublisherCommand() []string {
	return []string{PlaceholderSelf, "publish", "--config=" + PlaceholderConfig, "--env-file", PlaceholderEnvFile, "--data-root", PlaceholderDataRoot, PlaceholderCategory}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataRoot: defaultDataRoot,
			LogDir:   defaultLogDir,
		},
		Credentials: Credentials{
			EnvFiles: defaultEnvFiles(),
		},
		Pipeline: Pipeline{
			DownloadAttempts:  defaultDownloadAttempts,
			RetryDelaySeconds: defaultRetryDelaySeconds,
		},
		Commands: Commands{
			Downloader: defaultDownloaderCommand(),
			Uploader:   defaultUploaderCommand(),
			Publisher:  defaultPublisherCommand(),
		},
		Downloader: Downloader{
			YtdlpBinary:      defaultYtdlpBinary,
			MetadataFile:     defaultMetadataFile,
			AudioFormat:      defaultAudioFormat,
			AudioQuality:     defaultAudioQuality,
			ThumbnailBaseURL: defaultThumbnailBaseURL,
		},
		WordPress: WordPress{
			UploadsPath:           defaultUploadsPath,
			PostStatus:            defaultPostStatus,
			PlayerSkip:            defaultPlayerSkip,
			RequestTimeoutSeconds: defaultWordPressTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotificationTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
