package monitor

import "errors"

// ErrSettingsUnavailable means no evaluation could start because the current
// thresholds could not be loaded.
var ErrSettingsUnavailable = errors.New("settings unavailable")

const (
	reasonNoFacts       = "device source returned no facts"
	reasonEmptyDeviceID = "empty device id"
)
