package handlers

import (
	"errors"
	"log"
	"net/http"

	"catmap/catalog"
	"catmap/models"
	"catmap/processing"
	"catmap/storage"
	"catmap/utils"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Error string `json:"error"`
}

type WarningsResponse struct {
	Error    string   `json:"error"`
	Warnings []string `json:"warnings"`
}

type IDRequest struct {
	ID uint64 `json:"id" binding:"required"`
}

type PageRequest struct {
	Page int `form:"page"`
}

var (
	// Predefined errors
	OKResponse       = Response{}
	BadIDResponse    = Response{"bad id"}
	NoFilesResponse  = Response{"no files"}
	DBError1Response = Response{"DB Error 1"}
	DBError2Response = Response{"DB Error 2"}
)

// MapDefaults is where the map starts for a new observation
type MapDefaults struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom int     `json:"zoom"`
}

type Dependencies struct {
	Pipeline       *processing.Pipeline
	Catalog        *catalog.Service
	Storage        storage.StorageAPI
	MaxUploadBytes int64
	Map            MapDefaults
}

var deps Dependencies

// Init must be called before the handlers are registered
func Init(d Dependencies) {
	deps = d
}

func idParam(c *gin.Context) (uint64, bool) {
	id := utils.StringToUInt64(c.Param("id"))
	if id == 0 {
		c.JSON(http.StatusBadRequest, BadIDResponse)
		return 0, false
	}
	return id, true
}

// respondError maps catalog and model errors to status codes, anything unknown is a 500
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{err.Error()})
	case errors.Is(err, catalog.ErrPhotoTaken):
		c.JSON(http.StatusConflict, Response{err.Error()})
	case errors.Is(err, models.ErrEmptyObservation), errors.Is(err, catalog.ErrInvalidCat), errors.Is(err, catalog.ErrNoLocation):
		c.JSON(http.StatusBadRequest, Response{err.Error()})
	default:
		log.Printf("Request %s failed: %v", c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
	}
}

func warningsResponse(warnings []error) WarningsResponse {
	return WarningsResponse{Warnings: utils.ErrorStrings(warnings)}
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"storage":    deps.Storage.Describe(),
		"free_space": deps.Storage.GetFreeSpace(),
	})
}
