package driven

import "context"

// UploadResult is the outcome of an asset upload. Upload never returns a
// Go error: a failed cascade yields Success=false and the caller decides
// whether to keep the original remote URL.
type UploadResult struct {
	Success bool

	// Path is the stored asset reference usable inside document content,
	// e.g. "assets/image-xxx.png". Set only on success.
	Path string

	// Err describes the failure when Success is false.
	Err string
}

// AssetUploader stores a binary blob in the host's asset space.
type AssetUploader interface {
	// Upload attempts to store data under targetFolder and returns the
	// stable reference path. Implementations exhaust all their fallback
	// strategies before reporting failure.
	Upload(ctx context.Context, data []byte, filename, targetFolder string) UploadResult
}

// AssetFetcher downloads a remote resource referenced by item content.
type AssetFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
