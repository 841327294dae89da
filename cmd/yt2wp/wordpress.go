package main

import (
	"time"

	"yt2wp/internal/config"
	"yt2wp/internal/credentials"
	"yt2wp/internal/services"
	"yt2wp/internal/wordpress"
)

// loadCredentials resolves and parses the credentials file the command
// should use. Missing or incomplete files are prerequisite errors.
func loadCredentials(cfg *config.Config) (credentials.Credentials, error) {
	path, err := credentials.Resolve(cfg.Credentials.EnvFiles)
	if err != nil {
		return credentials.Credentials{}, err
	}
	creds, err := credentials.Load(path)
	if err != nil {
		return credentials.Credentials{}, services.Wrap(services.ErrPrerequisite, "prerequisites", "Load credentials", path, err)
	}
	if err := creds.Validate(); err != nil {
		return credentials.Credentials{}, services.Wrap(services.ErrPrerequisite, "prerequisites", "Validate credentials", path, err)
	}
	return creds, nil
}

func newWordPressClient(cfg *config.Config, creds credentials.Credentials) (*wordpress.Client, error) {
	timeout := time.Duration(cfg.WordPress.RequestTimeoutSeconds) * time.Second
	return wordpress.NewClient(creds, timeout, nil)
}
