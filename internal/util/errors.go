package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in document")
	ErrUnsupportedUpload = errors.New("unsupported upload type")
	ErrSummaryNotFound   = errors.New("summary not found")
)
