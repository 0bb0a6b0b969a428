package services

import "errors"

// Report service errors
var (
	ErrNoReport          = errors.New("no report has been produced yet")
	ErrArchiveDisabled   = errors.New("report archive is not configured")
)
