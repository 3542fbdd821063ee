package handlers

import (
	"net/http"

	"catmap/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type CatInfo struct {
	ID   uint64  `json:"id"`
	Name string  `json:"name"`
	Note string  `json:"note"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type CatDetailResponse struct {
	CatInfo
	Observations int         `json:"observations"`
	Photos       []PhotoInfo `json:"photos"`
}

type CatListResponse struct {
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	Cats       []CatInfo `json:"cats"`
}

type CatSaveRequest struct {
	ID   uint64  `json:"id"`
	Name string  `json:"name" binding:"required"`
	Note string  `json:"note"`
	Lat  float64 `json:"lat"` // used only when creating
	Lng  float64 `json:"lng"`
}

type CatNearestRequest struct {
	Lat *float64 `form:"lat" binding:"required"`
	Lng *float64 `form:"lng" binding:"required"`
}

func NewCatInfo(cat *models.Cat) CatInfo {
	return CatInfo{
		ID:   cat.ID,
		Name: cat.Name,
		Note: cat.Note,
		Lat:  cat.GpsLat,
		Lng:  cat.GpsLong,
	}
}

func catInfos(cats []models.Cat) []CatInfo {
	result := make([]CatInfo, 0, len(cats))
	for i := range cats {
		result = append(result, NewCatInfo(&cats[i]))
	}
	return result
}

func CatList(c *gin.Context) {
	r := PageRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	page, err := deps.Catalog.Store().ListCats(c.Request.Context(), r.Page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CatListResponse{
		Page:       page.Page,
		TotalPages: page.TotalPages,
		Cats:       catInfos(page.Cats),
	})
}

func CatGet(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	cat, photos, err := deps.Catalog.CatDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CatDetailResponse{
		CatInfo:      NewCatInfo(cat),
		Observations: len(cat.Observations),
		Photos:       photoInfos(photos),
	})
}

// CatNearest is used to suggest a cat for an observation at the given point
func CatNearest(c *gin.Context) {
	r := CatNearestRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	cats, err := deps.Catalog.Store().NearestCats(c.Request.Context(), models.Location{Lat: *r.Lat, Lng: *r.Lng})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catInfos(cats))
}

func CatSave(c *gin.Context) {
	r := CatSaveRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	var cat *models.Cat
	var err error
	if r.ID == 0 {
		cat, err = deps.Catalog.CreateCat(c.Request.Context(), r.Name, r.Note, models.Location{Lat: r.Lat, Lng: r.Lng})
	} else {
		cat, err = deps.Catalog.UpdateCat(c.Request.Context(), r.ID, r.Name, r.Note)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCatInfo(cat))
}

func CatDelete(c *gin.Context) {
	r := IDRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if err := deps.Catalog.DeleteCat(c.Request.Context(), r.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}
