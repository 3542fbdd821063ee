package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"time"

	"catmap/models"
	"catmap/storage"

	"github.com/disintegration/imaging"
)

// AcceptedContentType is the only type ingested, everything else is skipped
const AcceptedContentType = "image/jpeg"

var (
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrDecode                 = errors.New("cannot decode image")
	ErrThumbnail              = errors.New("cannot create thumbnail")
	ErrStoreCommit            = errors.New("cannot save photo records")
)

// Upload is one file of a multipart upload
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

type Config struct {
	ThumbnailSize    int
	ThumbnailQuality int
	Metadata         MetadataOptions
}

func (c Config) withDefaults() Config {
	if c.ThumbnailSize <= 0 {
		c.ThumbnailSize = DefaultThumbnailSize
	}
	if c.ThumbnailQuality <= 0 || c.ThumbnailQuality > 100 {
		c.ThumbnailQuality = DefaultThumbnailQuality
	}
	return c
}

type PhotoStore interface {
	// CreatePhotos saves all photos in one go (and sets their IDs)
	CreatePhotos(ctx context.Context, photos []*models.Photo) error
}

type Pipeline struct {
	cfg    Config
	layout *storage.Layout
	store  PhotoStore
	now    func() time.Time
}

func NewPipeline(cfg Config, layout *storage.Layout, store PhotoStore) *Pipeline {
	return &Pipeline{
		cfg:    cfg.withDefaults(),
		layout: layout,
		store:  store,
		now:    time.Now,
	}
}

// Ingest stores every acceptable upload with its thumbnail and returns the saved photos in
// upload order. Bad files are logged and left out, they never affect the other files.
// An error is returned only if the photo records cannot be saved; files already written
// stay on the storage in that case.
func (p *Pipeline) Ingest(ctx context.Context, uploads []Upload) ([]*models.Photo, error) {
	photos := make([]*models.Photo, 0, len(uploads))
	for i := range uploads {
		photo, err := p.processOne(&uploads[i])
		if err != nil {
			log.Printf("Skipping upload #%d (%s): %v", i+1, uploads[i].Name, err)
			continue
		}
		photos = append(photos, photo)
	}
	if len(photos) == 0 {
		return photos, nil
	}
	if err := p.store.CreatePhotos(ctx, photos); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreCommit, err)
	}
	return photos, nil
}

func (p *Pipeline) processOne(upload *Upload) (photo *models.Photo, err error) {
	if !isAccepted(upload.ContentType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, upload.ContentType)
	}
	defer func() {
		if r := recover(); r != nil {
			photo, err = nil, fmt.Errorf("%w: panic: %v", ErrDecode, r)
		}
	}()
	// The original is kept even if it turns out to be broken
	slot := p.layout.Allocate()
	original, err := p.layout.SaveOriginal(slot, upload.Name, bytes.NewReader(upload.Data))
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var thumbContent bytes.Buffer
	if _, err = CreateThumb(img, p.cfg.ThumbnailSize, p.cfg.ThumbnailQuality, &thumbContent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrThumbnail, err)
	}
	thumb, err := p.layout.SaveThumb(slot, upload.Name, &thumbContent)
	if err != nil {
		return nil, err
	}

	metadata := ExtractMetadata(upload.Data, p.cfg.Metadata)
	takenAt := p.now().UTC()
	if metadata.TakenAt != nil {
		takenAt = *metadata.TakenAt
	}
	size := img.Bounds().Size()
	return &models.Photo{
		TakenAt:     takenAt,
		GpsLat:      metadata.GpsLat,
		GpsLong:     metadata.GpsLong,
		Width:       size.X,
		Height:      size.Y,
		OriginalURL: original.URL,
		ThumbURL:    thumb.URL,
	}, nil
}

// isAccepted ignores parameters and case, "image/JPEG; q=1" is fine
func isAccepted(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == AcceptedContentType
}
