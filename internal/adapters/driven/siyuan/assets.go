package siyuan

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/readfold/readfold/internal/core/ports/driven"
	"github.com/readfold/readfold/internal/logger"
)

// Ensure Uploader implements the interface.
var _ driven.AssetUploader = (*Uploader)(nil)

// tempImportDir is the workspace-relative folder tier 3 stages files in
// before registering them as assets.
const tempImportDir = "/temp/import"

// Uploader stores binary blobs in the kernel's asset space. Three
// strategies are tried in strict order, one attempt each: the asset
// upload endpoint, a direct file write under the target folder, and a
// staged write through the local asset import endpoint. Upload never
// returns a Go error so a broken asset can never fail a whole item.
type Uploader struct {
	client *Client
	now    func() time.Time
}

// NewUploader creates an asset uploader over a kernel client.
func NewUploader(client *Client) *Uploader {
	return &Uploader{client: client, now: time.Now}
}

// Upload stores data under targetFolder and returns the reference path.
func (u *Uploader) Upload(ctx context.Context, data []byte, filename, targetFolder string) driven.UploadResult {
	var failures []string

	if ref, err := u.uploadAsset(ctx, data, filename, targetFolder); err == nil {
		return driven.UploadResult{Success: true, Path: ref}
	} else {
		failures = append(failures, fmt.Sprintf("asset upload: %v", err))
	}

	unique := uniqueName(filename, u.now())

	if ref, err := u.putFileAsset(ctx, data, unique, targetFolder); err == nil {
		return driven.UploadResult{Success: true, Path: ref}
	} else {
		failures = append(failures, fmt.Sprintf("direct write: %v", err))
	}

	if ref, err := u.importLocalAsset(ctx, data, unique); err == nil {
		return driven.UploadResult{Success: true, Path: ref}
	} else {
		failures = append(failures, fmt.Sprintf("local import: %v", err))
	}

	logger.Warn("All upload strategies failed for %s", filename)
	return driven.UploadResult{Err: "all upload strategies failed: " + strings.Join(failures, "; ")}
}

// uploadAsset is tier 1: the dedicated asset endpoint, which renames on
// collision and reports the stored path per filename.
func (u *Uploader) uploadAsset(ctx context.Context, data []byte, filename, targetFolder string) (string, error) {
	fields := map[string]string{
		"assetsDirPath": "/" + strings.Trim(targetFolder, "/") + "/",
	}
	var resp struct {
		SuccMap map[string]string `json:"succMap"`
	}
	if err := u.client.postMultipart(ctx, "/api/asset/upload", fields, "file[]", filename, data, &resp); err != nil {
		return "", err
	}
	ref := pickFromSuccMap(resp.SuccMap, filename)
	if ref == "" {
		return "", fmt.Errorf("no stored path for %s in success map", filename)
	}
	return ref, nil
}

// putFileAsset is tier 2: a generic file write to a unique name under
// the target folder, bypassing asset handling.
func (u *Uploader) putFileAsset(ctx context.Context, data []byte, unique, targetFolder string) (string, error) {
	folder := strings.Trim(targetFolder, "/")
	if err := u.putFile(ctx, "/data/"+folder+"/"+unique, data); err != nil {
		return "", err
	}
	return folder + "/" + unique, nil
}

// importLocalAsset is tier 3: stage the file in a temporary folder and
// let the kernel move it into its asset space. The staged file is
// removed afterwards regardless of outcome.
func (u *Uploader) importLocalAsset(ctx context.Context, data []byte, unique string) (string, error) {
	staged := tempImportDir + "/" + unique
	if err := u.putFile(ctx, staged, data); err != nil {
		return "", fmt.Errorf("stage: %w", err)
	}
	defer u.removeFile(ctx, staged)

	var resp struct {
		SuccMap map[string]string `json:"succMap"`
	}
	payload := map[string]any{"assetPaths": []string{staged}}
	if err := u.client.post(ctx, "/api/asset/insertLocalAssets", payload, &resp); err != nil {
		return "", err
	}
	ref := pickFromSuccMap(resp.SuccMap, unique)
	if ref == "" {
		return "", fmt.Errorf("no stored path for %s in success map", unique)
	}
	return ref, nil
}

func (u *Uploader) putFile(ctx context.Context, filePath string, data []byte) error {
	fields := map[string]string{
		"path":  filePath,
		"isDir": "false",
	}
	return u.client.postMultipart(ctx, "/api/file/putFile", fields, "file", path.Base(filePath), data, nil)
}

func (u *Uploader) removeFile(ctx context.Context, filePath string) {
	if err := u.client.post(ctx, "/api/file/removeFile", map[string]string{"path": filePath}, nil); err != nil {
		logger.Debug("Failed to remove staged file %s: %v", filePath, err)
	}
}

// pickFromSuccMap extracts the stored path for a filename: exact key
// match, then a fuzzy match on the base name, then the first entry.
func pickFromSuccMap(succMap map[string]string, filename string) string {
	if len(succMap) == 0 {
		return ""
	}
	if ref, ok := succMap[filename]; ok {
		return ref
	}
	base := strings.TrimSuffix(filename, path.Ext(filename))
	for key, ref := range succMap {
		if strings.Contains(key, base) || strings.Contains(path.Base(ref), base) {
			return ref
		}
	}
	for _, ref := range succMap {
		return ref
	}
	return ""
}

// uniqueName synthesises a collision-free filename that keeps the
// original extension.
func uniqueName(filename string, now time.Time) string {
	ext := path.Ext(filename)
	return now.Format("20060102150405") + "-" + uuid.NewString()[:7] + ext
}
