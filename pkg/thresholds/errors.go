package thresholds

import "errors"

var (
	errNoThresholdFields = errors.New("no threshold fields to update")
	errNoGroupFields     = errors.New("no group fields to update")
	errBlankGroup        = errors.New("group name must not be blank")
)
