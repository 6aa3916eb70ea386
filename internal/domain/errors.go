package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been initialized.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotSubmitted is returned when a result is requested before submission.
	ErrSessionNotSubmitted = errors.New("quiz session not submitted yet")
	// ErrCatalogNotFound indicates the question catalog could not be loaded.
	ErrCatalogNotFound = errors.New("question catalog not found")
	// ErrCatalogEmpty indicates the loaded catalog has no questions at all.
	ErrCatalogEmpty = errors.New("question catalog is empty")
	// ErrAnalysisUnavailable marks the degraded state when the external
	// analysis collaborator fails; it never invalidates the quiz result.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	// ErrAvatarUnavailable indicates the avatar could not be fetched or decoded.
	ErrAvatarUnavailable = errors.New("avatar unavailable")
)
