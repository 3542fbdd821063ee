package handlers

import (
	"net/http"
	"time"

	"catmap/catalog"
	"catmap/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type ObservationInfo struct {
	ID      uint64      `json:"id"`
	Date    time.Time   `json:"date"`
	Note    string      `json:"note"`
	Lat     float64     `json:"lat"`
	Lng     float64     `json:"lng"`
	CatID   *uint64     `json:"cat_id"`
	CatName string      `json:"cat_name"`
	Photos  []PhotoInfo `json:"photos"`
}

type ObservationListResponse struct {
	Page         int               `json:"page"`
	TotalPages   int               `json:"total_pages"`
	Observations []ObservationInfo `json:"observations"`
}

type ObservationSaveRequest struct {
	ID       uint64    `json:"id"`
	Date     time.Time `json:"date"`
	Note     string    `json:"note"`
	Lat      *float64  `json:"lat"` // both missing: taken from the photos
	Lng      *float64  `json:"lng"`
	CatID    *uint64   `json:"cat_id"`
	PhotoIDs []uint64  `json:"photo_ids"`
}

func NewObservationInfo(o *models.Observation) ObservationInfo {
	location := o.GetLocation()
	info := ObservationInfo{
		ID:     o.ID,
		Date:   o.Date,
		Note:   o.Note,
		Lat:    location.Lat,
		Lng:    location.Lng,
		CatID:  o.CatID,
		Photos: photoInfos(o.Photos),
	}
	if o.Cat != nil {
		info.CatName = o.Cat.Name
	}
	return info
}

func ObservationList(c *gin.Context) {
	r := PageRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	page, err := deps.Catalog.Store().ListObservations(c.Request.Context(), r.Page)
	if err != nil {
		respondError(c, err)
		return
	}
	result := ObservationListResponse{
		Page:         page.Page,
		TotalPages:   page.TotalPages,
		Observations: make([]ObservationInfo, 0, len(page.Observations)),
	}
	for i := range page.Observations {
		result.Observations = append(result.Observations, NewObservationInfo(&page.Observations[i]))
	}
	c.JSON(http.StatusOK, result)
}

// ObservationNew returns the starting values of the new observation form
func ObservationNew(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"date": time.Now().UTC(),
		"map":  deps.Map,
	})
}

func ObservationGet(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	observation, err := deps.Catalog.Store().FindObservation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewObservationInfo(observation))
}

func ObservationSave(c *gin.Context) {
	r := ObservationSaveRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	input := catalog.ObservationInput{
		ID:       r.ID,
		Date:     r.Date,
		Note:     r.Note,
		CatID:    r.CatID,
		PhotoIDs: r.PhotoIDs,
	}
	if r.Lat != nil && r.Lng != nil {
		input.Location = &models.Location{Lat: *r.Lat, Lng: *r.Lng}
	} else if r.Lat != nil || r.Lng != nil {
		c.JSON(http.StatusBadRequest, Response{"lat and lng go together"})
		return
	}
	observation, err := deps.Catalog.SaveObservation(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewObservationInfo(observation))
}

func ObservationDelete(c *gin.Context) {
	r := IDRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	warnings, err := deps.Catalog.DeleteObservation(c.Request.Context(), r.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, warningsResponse(warnings))
}
