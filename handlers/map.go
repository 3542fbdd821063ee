package handlers

import (
	"net/http"

	"catmap/catalog"

	"github.com/gin-gonic/gin"
)

type MapResponse struct {
	Map          MapDefaults      `json:"map"`
	Cats         []catalog.Marker `json:"cats"`
	Observations []catalog.Marker `json:"observations"` // not linked to any cat
}

// MapGet returns the markers of the main map: all cats and the observations without a cat
func MapGet(c *gin.Context) {
	markers, err := deps.Catalog.Store().MapMarkers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapResponse{
		Map:          deps.Map,
		Cats:         markers.Cats,
		Observations: markers.Observations,
	})
}
