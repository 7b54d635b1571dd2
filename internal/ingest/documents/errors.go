package documents

import "errors"

var (
	// ErrNoFile means the request carried no upload payload.
	ErrNoFile = errors.New("no file provided")
	// ErrUploadFailed means the original could not be persisted.
	ErrUploadFailed = errors.New("upload failed")
	// ErrNotFound means the requested artifact is absent.
	ErrNotFound = errors.New("document not found")
)
