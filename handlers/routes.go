package handlers

import (
	"github.com/gin-gonic/gin"
)

func Register(router gin.IRouter) {
	// Photos
	router.POST("/photo/upload", PhotoUpload)
	router.GET("/photo/:id", PhotoGet)
	router.POST("/photo/delete", PhotoDelete)
	// Observations
	router.GET("/observation/list", ObservationList)
	router.GET("/observation/new", ObservationNew)
	router.GET("/observation/:id", ObservationGet)
	router.POST("/observation/save", ObservationSave)
	router.POST("/observation/delete", ObservationDelete)
	// Cats
	router.GET("/cat/list", CatList)
	router.GET("/cat/nearest", CatNearest)
	router.GET("/cat/:id", CatGet)
	router.POST("/cat/save", CatSave)
	router.POST("/cat/delete", CatDelete)
	// Misc
	router.GET("/map", MapGet)
	router.GET("/health", Health)
}
