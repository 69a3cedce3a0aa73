package agent

import "errors"

var (
	// ErrInvalidOptions is returned by New for unusable options.
	ErrInvalidOptions = errors.New("agent: invalid options")

	// ErrAnnounceFailed is returned when a discovery payload could not be
	// published.
	ErrAnnounceFailed = errors.New("agent: announce failed")
)
