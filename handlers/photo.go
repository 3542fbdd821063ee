package handlers

import (
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"catmap/models"
	"catmap/processing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const uploadFormField = "files"

type PhotoInfo struct {
	ID            uint64    `json:"id"`
	ObservationID *uint64   `json:"observation_id"`
	TakenAt       time.Time `json:"taken_at"`
	GpsLat        *float64  `json:"gps_lat"`
	GpsLong       *float64  `json:"gps_long"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	URL           string    `json:"url"`
	Thumb         string    `json:"thumb"`
}

func NewPhotoInfo(p *models.Photo) PhotoInfo {
	return PhotoInfo{
		ID:            p.ID,
		ObservationID: p.ObservationID,
		TakenAt:       p.TakenAt,
		GpsLat:        p.GpsLat,
		GpsLong:       p.GpsLong,
		Width:         p.Width,
		Height:        p.Height,
		URL:           p.OriginalURL,
		Thumb:         p.ThumbURL,
	}
}

func photoInfos(photos []models.Photo) []PhotoInfo {
	result := make([]PhotoInfo, 0, len(photos))
	for i := range photos {
		result = append(result, NewPhotoInfo(&photos[i]))
	}
	return result
}

// PhotoUpload stores the JPEG files of a multipart form. Files that cannot be used are
// skipped, the response lists only the stored ones, in upload order.
func PhotoUpload(c *gin.Context) {
	if deps.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, deps.MaxUploadBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	files := form.File[uploadFormField]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, NoFilesResponse)
		return
	}
	uploads := make([]processing.Upload, 0, len(files))
	for _, file := range files {
		data, err := readUpload(file)
		if err != nil {
			log.Printf("Upload %s: %v", file.Filename, err)
			continue
		}
		uploads = append(uploads, processing.Upload{
			Name:        file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	photos, err := deps.Pipeline.Ingest(c.Request.Context(), uploads)
	if err != nil {
		log.Printf("Upload commit: %v", err)
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}
	result := make([]PhotoInfo, 0, len(photos))
	for _, p := range photos {
		result = append(result, NewPhotoInfo(p))
	}
	c.JSON(http.StatusOK, result)
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func PhotoGet(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	photo, err := deps.Catalog.Store().FindPhoto(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPhotoInfo(photo))
}

func PhotoDelete(c *gin.Context) {
	r := IDRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	warnings, err := deps.Catalog.DeletePhoto(c.Request.Context(), r.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, warningsResponse(warnings))
}
