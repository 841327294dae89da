// Package notifications delivers pipeline run events via ntfy.
//
// The default implementation posts to the topic configured in config.toml and
// degrades to a no-op when notifications are disabled. Callers treat delivery
// failures as non-fatal: a run never fails because a push notification did.
package notifications
