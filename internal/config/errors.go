package config

import "errors"

var (
	// ErrUnknownKey reports a key in the file that no setting uses.
	ErrUnknownKey = errors.New("config: unknown key")

	// ErrUnknownPattern reports a bench pattern with no registered layout.
	ErrUnknownPattern = errors.New("config: unknown pattern")

	// ErrInvalid reports an out-of-range setting.
	ErrInvalid = errors.New("config: invalid setting")
)
