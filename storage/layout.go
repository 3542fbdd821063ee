package storage

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	ThumbPrefix     = "t-"
	defaultFileName = "photo.jpg"
)

var ErrForeignURL = errors.New("url is not under the public base url")

// LayoutConfig maps the storage root 1:1 to a public URL prefix, e.g. "/uploads/".
// The root itself belongs to the StorageAPI (DiskStorage.BasePath or the S3 prefix), the
// layout only deals in paths relative to it.
type LayoutConfig struct {
	PublicBaseURL string
}

// Layout places every uploaded file in its own randomly named directory:
//
//	<root>/<token>/<name>
//	<root>/<token>/t-<name>
type Layout struct {
	baseURL  string
	storage  StorageAPI
	newToken func() string
}

// Slot is the directory allocated for one uploaded file
type Slot struct {
	Token string
}

type StoredFile struct {
	Path string // relative to the storage root
	URL  string
	Size int64
}

func NewLayout(cfg LayoutConfig, storage StorageAPI) *Layout {
	baseURL := cfg.PublicBaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Layout{
		baseURL:  baseURL,
		storage:  storage,
		newToken: randomToken,
	}
}

// randomToken is 128 bits, hex encoded without dashes
func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (l *Layout) Storage() StorageAPI {
	return l.storage
}

func (l *Layout) Allocate() Slot {
	return Slot{Token: l.newToken()}
}

// SanitizeFileName keeps only the base name and replaces spaces with underscores
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return defaultFileName
	}
	return strings.ReplaceAll(name, " ", "_")
}

func (l *Layout) SaveOriginal(slot Slot, fileName string, r io.Reader) (StoredFile, error) {
	return l.save(slot.Token+"/"+SanitizeFileName(fileName), r)
}

func (l *Layout) SaveThumb(slot Slot, fileName string, r io.Reader) (StoredFile, error) {
	return l.save(slot.Token+"/"+ThumbPrefix+SanitizeFileName(fileName), r)
}

func (l *Layout) save(relPath string, r io.Reader) (StoredFile, error) {
	size, err := l.storage.Save(relPath, r)
	if err != nil {
		return StoredFile{}, fmt.Errorf("saving %s: %w", relPath, err)
	}
	return StoredFile{Path: relPath, URL: l.URLFor(relPath), Size: size}, nil
}

func (l *Layout) URLFor(relPath string) string {
	return l.baseURL + relPath
}

// PathFor reverses URLFor. Only URLs pointing inside a token directory are accepted.
func (l *Layout) PathFor(url string) (string, error) {
	if !strings.HasPrefix(url, l.baseURL) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	relPath := strings.TrimPrefix(url, l.baseURL)
	if relPath == "" || path.Clean(relPath) != relPath || strings.HasPrefix(relPath, "..") || path.Dir(relPath) == "." {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	return relPath, nil
}

// DeletePhotoFiles removes both files and their directory. It never fails, every problem
// (missing file, non-empty directory, permissions, ...) is returned as a warning instead.
func (l *Layout) DeletePhotoFiles(originalURL, thumbURL string) (warnings []error) {
	dir := ""
	for _, url := range []string{thumbURL, originalURL} {
		relPath, err := l.PathFor(url)
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		if err = l.storage.Delete(relPath); err != nil {
			warnings = append(warnings, fmt.Errorf("deleting %s: %w", relPath, err))
		}
		if dir == "" {
			dir = path.Dir(relPath)
		}
	}
	if dir != "" {
		if err := l.storage.DeleteDir(dir); err != nil {
			warnings = append(warnings, fmt.Errorf("deleting directory %s: %w", dir, err))
		}
	}
	return warnings
}
