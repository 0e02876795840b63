package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/readfold/readfold/internal/core/ports/driven"
	"github.com/readfold/readfold/internal/logger"
)

// markdownLinkRe matches markdown links and images with an absolute
// http(s) target. Group 1 distinguishes images ("!") from plain links.
var markdownLinkRe = regexp.MustCompile(`(!?)\[([^\]]*)\]\((https?://[^)\s]+)\)`)

// attachmentExts lists the file extensions treated as downloadable
// attachments when linked (not embedded) in item content. Plain links
// to web pages stay remote.
var attachmentExts = map[string]bool{
	".pdf": true, ".zip": true, ".7z": true, ".rar": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".epub": true, ".mobi": true,
	".mp3": true, ".mp4": true, ".csv": true, ".txt": true,
}

// LocaliseOptions controls which link kinds are rewritten and where the
// downloaded blobs are stored.
type LocaliseOptions struct {
	// Images enables downloading embedded images.
	Images bool

	// ImageFolder receives downloaded images.
	ImageFolder string

	// AttachmentFolder receives downloaded attachment files.
	AttachmentFolder string
}

// Localiser rewrites remote asset references in item content to host
// asset paths. Every rewrite is best-effort: a failed download or
// upload leaves the original remote link untouched so the document is
// still complete, just not self-contained.
type Localiser struct {
	fetcher  driven.AssetFetcher
	uploader driven.AssetUploader
}

// NewLocaliser creates an asset localiser. Either dependency may be nil,
// in which case Localise is a no-op.
func NewLocaliser(fetcher driven.AssetFetcher, uploader driven.AssetUploader) *Localiser {
	return &Localiser{fetcher: fetcher, uploader: uploader}
}

// Localise rewrites remote images and attachment links in markdown to
// stored asset paths. Returns the rewritten markdown and one warning
// per link that could not be localised.
func (l *Localiser) Localise(ctx context.Context, markdown string, opts LocaliseOptions) (string, []string) {
	if l.fetcher == nil || l.uploader == nil {
		return markdown, nil
	}

	var warnings []string
	resolved := make(map[string]string)

	out := markdownLinkRe.ReplaceAllStringFunc(markdown, func(match string) string {
		parts := markdownLinkRe.FindStringSubmatch(match)
		isImage := parts[1] == "!"
		label := parts[2]
		remote := parts[3]

		if isImage && !opts.Images {
			return match
		}
		if !isImage && !isAttachmentURL(remote) {
			return match
		}

		if stored, ok := resolved[remote]; ok {
			return parts[1] + "[" + label + "](" + stored + ")"
		}

		folder := opts.ImageFolder
		if !isImage {
			folder = opts.AttachmentFolder
		}

		stored, err := l.localiseOne(ctx, remote, folder)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("localise %s: %v", remote, err))
			return match
		}
		resolved[remote] = stored
		return parts[1] + "[" + label + "](" + stored + ")"
	})

	return out, warnings
}

// localiseOne downloads one remote resource and stores it.
func (l *Localiser) localiseOne(ctx context.Context, remote, folder string) (string, error) {
	data, err := l.fetcher.Fetch(ctx, remote)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}

	result := l.uploader.Upload(ctx, data, assetFilename(remote), folder)
	if !result.Success {
		return "", fmt.Errorf("upload: %s", result.Err)
	}
	logger.Debug("Localised asset %s -> %s", remote, result.Path)
	return result.Path, nil
}

// assetFilename derives a storable filename from a remote URL.
func assetFilename(remote string) string {
	u, err := url.Parse(remote)
	if err != nil {
		return "asset-" + shortID()
	}
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return "asset-" + shortID()
	}
	return base
}

// isAttachmentURL reports whether a plain link points at a downloadable
// file rather than a web page.
func isAttachmentURL(remote string) bool {
	u, err := url.Parse(remote)
	if err != nil {
		return false
	}
	return attachmentExts[strings.ToLower(path.Ext(u.Path))]
}

func shortID() string {
	return uuid.NewString()[:8]
}
