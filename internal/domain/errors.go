package domain

import "errors"

var (
	// ErrCatalogNotFound signals a missing catalog resource.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrInvalidSchema signals a catalog resource missing required fields.
	ErrInvalidSchema = errors.New("invalid catalog schema")
	// ErrRankingFailed signals a ranking provider failure or unparseable
	// ranking output. Recovered inside the search pipeline, never surfaced.
	ErrRankingFailed = errors.New("ranking failed")
)
