// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across model/store/share layers.
var (
	// ErrValidation is the umbrella for input rejected at the point of entry.
	ErrValidation = errors.New("validation")

	// ErrUnsupportedFormat indicates an upload that is not an accepted media type.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrValidation)

	// ErrFileTooLarge indicates an upload above the ingestion byte budget.
	ErrFileTooLarge = fmt.Errorf("%w: file too large", ErrValidation)

	// ErrTooManyImages indicates an attempt to hold more images than a document allows.
	ErrTooManyImages = fmt.Errorf("%w: too many images", ErrValidation)

	// ErrDecode indicates a malformed or corrupted shared payload.
	ErrDecode = errors.New("decode error")

	// ErrDecodeFailed indicates a corrupt image or audio asset.
	ErrDecodeFailed = errors.New("asset decode failed")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStore indicates a remote persistence/retrieval failure.
	ErrStore = errors.New("store error")

	// ErrStoreUnavailable indicates the remote store is not configured.
	ErrStoreUnavailable = fmt.Errorf("%w: unavailable", ErrStore)

	// ErrRateLimited indicates the client created too many remote records recently.
	ErrRateLimited = errors.New("rate limited")
)
