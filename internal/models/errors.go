package models

import "errors"

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrExtractionFailure   = errors.New("content extraction failed")
	ErrEmbeddingFailure    = errors.New("embedding generation failed")
	ErrStoreUnavailable    = errors.New("vector store unavailable")
	ErrNoRelevantData      = errors.New("no relevant data found")
	ErrGeneratorFailure    = errors.New("text generation failed")
)
