package services

import "errors"

// Scan lifecycle errors. Handlers translate these into the matching
// HTTP problem responses.
var (
	ErrScanNotFinished = errors.New("scan has not finished")
	ErrScanFinished    = errors.New("scan already finished")
)
