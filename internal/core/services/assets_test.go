package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readfold/readfold/internal/core/ports/driven"
)

// fakeFetcher serves canned bytes and records fetched URLs.
type fakeFetcher struct {
	mu      sync.Mutex
	fetched []string
	err     error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []byte("blob"), nil
}

// fakeUploader stores under folder/filename and records uploads.
type fakeUploader struct {
	mu      sync.Mutex
	uploads []string
	fail    bool
}

func (u *fakeUploader) Upload(_ context.Context, _ []byte, filename, targetFolder string) driven.UploadResult {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fail {
		return driven.UploadResult{Err: "all strategies failed"}
	}
	stored := targetFolder + "/" + filename
	u.uploads = append(u.uploads, stored)
	return driven.UploadResult{Success: true, Path: stored}
}

func defaultOpts() LocaliseOptions {
	return LocaliseOptions{
		Images:           true,
		ImageFolder:      "assets/images",
		AttachmentFolder: "assets/attachments",
	}
}

func TestLocalise_RewritesImagesAndAttachments(t *testing.T) {
	l := NewLocaliser(&fakeFetcher{}, &fakeUploader{})

	markdown := "![cover](https://cdn.example.com/img/cover.png)\n" +
		"[paper](https://example.com/files/paper.pdf)\n" +
		"[homepage](https://example.com/about)"

	out, warnings := l.Localise(context.Background(), markdown, defaultOpts())

	assert.Empty(t, warnings)
	assert.Contains(t, out, "![cover](assets/images/cover.png)")
	assert.Contains(t, out, "[paper](assets/attachments/paper.pdf)")
	// Plain web links stay remote.
	assert.Contains(t, out, "[homepage](https://example.com/about)")
}

func TestLocalise_ImagesDisabled(t *testing.T) {
	fetcher := &fakeFetcher{}
	l := NewLocaliser(fetcher, &fakeUploader{})

	opts := defaultOpts()
	opts.Images = false
	out, warnings := l.Localise(context.Background(), "![x](https://cdn.example.com/a.png)", opts)

	assert.Empty(t, warnings)
	assert.Equal(t, "![x](https://cdn.example.com/a.png)", out)
	assert.Empty(t, fetcher.fetched)
}

func TestLocalise_FailureLeavesOriginalLink(t *testing.T) {
	l := NewLocaliser(&fakeFetcher{err: errors.New("timeout")}, &fakeUploader{})

	out, warnings := l.Localise(context.Background(), "![x](https://cdn.example.com/a.png)", defaultOpts())

	assert.Equal(t, "![x](https://cdn.example.com/a.png)", out)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "timeout")
}

func TestLocalise_UploadCascadeFailureLeavesOriginalLink(t *testing.T) {
	l := NewLocaliser(&fakeFetcher{}, &fakeUploader{fail: true})

	out, warnings := l.Localise(context.Background(), "![x](https://cdn.example.com/a.png)", defaultOpts())

	assert.Equal(t, "![x](https://cdn.example.com/a.png)", out)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "all strategies failed")
}

func TestLocalise_RepeatedURLFetchedOnce(t *testing.T) {
	fetcher := &fakeFetcher{}
	l := NewLocaliser(fetcher, &fakeUploader{})

	markdown := "![a](https://cdn.example.com/same.png) ![b](https://cdn.example.com/same.png)"
	out, warnings := l.Localise(context.Background(), markdown, defaultOpts())

	assert.Empty(t, warnings)
	assert.Equal(t, "![a](assets/images/same.png) ![b](assets/images/same.png)", out)
	assert.Len(t, fetcher.fetched, 1)
}

func TestLocalise_NilDependenciesNoOp(t *testing.T) {
	l := NewLocaliser(nil, nil)

	out, warnings := l.Localise(context.Background(), "![x](https://cdn.example.com/a.png)", defaultOpts())

	assert.Equal(t, "![x](https://cdn.example.com/a.png)", out)
	assert.Empty(t, warnings)
}

func TestAssetFilename(t *testing.T) {
	assert.Equal(t, "cover.png", assetFilename("https://cdn.example.com/img/cover.png?w=800"))
	// No usable basename falls back to a generated name.
	assert.Contains(t, assetFilename("https://cdn.example.com/"), "asset-")
}

func TestIsAttachmentURL(t *testing.T) {
	assert.True(t, isAttachmentURL("https://example.com/a.PDF"))
	assert.True(t, isAttachmentURL("https://example.com/a.zip?dl=1"))
	assert.False(t, isAttachmentURL("https://example.com/about"))
	assert.False(t, isAttachmentURL("https://example.com/page.html"))
}
