package services

import "errors"

// Pipeline-level failures. Record-level problems are reported as RecordIssue
// values wrapping ErrMalformedRecord and never abort a run.
var (
	ErrMalformedRecord  = errors.New("malformed sales record")
	ErrEmptyTrainingSet = errors.New("no training data")
	ErrUnknownProduct   = errors.New("unknown product")
	ErrInvalidStartDate = errors.New("invalid start date")
	ErrModelNotFitted   = errors.New("forecast model has not been fitted")
	ErrDatasetNotFound  = errors.New("dataset not found")
	ErrUnsupportedFile  = errors.New("unsupported file format")
)
