package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorRunInProgress is returned when a consolidation for the same
// organization/period key is already holding the posting lock.
var ErrorRunInProgress = errors.New("consolidation already in progress for this period")
