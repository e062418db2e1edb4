package webfont

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed requests: missing family or
	// weight, weight which is not a non-negative integer, empty subset text.
	ErrValidation = errors.New("invalid font request")
	// ErrEmptyResponse is returned when font service did not return a stylesheet.
	ErrEmptyResponse = errors.New("stylesheet download failed")
	// ErrInvalidResponse is returned when stylesheet lacks expected elements.
	ErrInvalidResponse = errors.New("stylesheet may be invalid")
	// ErrMissingMetadata is returned when file name is requested before
	// version, label and extension are known.
	ErrMissingMetadata = errors.New("cannot generate filename")
	// ErrMissingVersion is returned when subset font url has no version.
	ErrMissingVersion = errors.New("font version does not exist")
	// ErrDownloadFailed is matched by every *DownloadError.
	ErrDownloadFailed = errors.New("font download failed")
)

// DownloadError describes failed font binary fetch or write.
type DownloadError struct {
	URL  string
	Path string
	Err  error
}

func (e *DownloadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("font download failed: %s -> %s", e.URL, e.Path)
	}
	return fmt.Sprintf("font download failed: %s -> %s: %v", e.URL, e.Path, e.Err)
}

func (e *DownloadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDownloadFailed}
	}
	return []error{ErrDownloadFailed, e.Err}
}
