package main

import (
	"log"
	"os"
	"strings"
	"time"

	"catmap/catalog"
	"catmap/config"
	"catmap/db"
	"catmap/handlers"
	"catmap/models"
	"catmap/processing"
	"catmap/storage"
	"catmap/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
)

func main() {
	db.Init(db.Options{
		MySQLDSN:    config.MYSQL_DSN,
		PostgresDSN: config.POSTGRES_DSN,
		SQLiteFile:  config.SQLITE_FILE,
	})
	if err := models.Init(db.Instance); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		log.Print("Migration done")
		return
	}

	files, err := newStorage()
	if err != nil {
		log.Fatalf("Storage error: %v", err)
	}
	log.Printf("Using storage %s", files.Describe())
	layout := storage.NewLayout(storage.LayoutConfig{PublicBaseURL: config.UPLOAD_URL}, files)
	store := catalog.NewStore(db.Instance)
	handlers.Init(handlers.Dependencies{
		Pipeline: processing.NewPipeline(processing.Config{
			ThumbnailSize:    config.THUMBNAIL_SIZE,
			ThumbnailQuality: config.THUMBNAIL_QUALITY,
			Metadata: processing.MetadataOptions{
				Location:    exifLocation(),
				ZoneFromGPS: config.EXIF_ZONE_FROM_GPS,
			},
		}, layout, store),
		Catalog:        catalog.NewService(store, catalog.NewAggregator(), layout),
		Storage:        files,
		MaxUploadBytes: int64(config.MAX_UPLOAD_MB) << 20,
		Map: handlers.MapDefaults{
			Lat:  config.DEFAULT_LAT,
			Lng:  config.DEFAULT_LNG,
			Zoom: config.DEFAULT_ZOOM,
		},
	})

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	router.MaxMultipartMemory = int64(config.MAX_UPLOAD_MB) << 20
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        30 * 24 * time.Hour,
	}))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/photo/upload", config.UPLOAD_URL})))
	}
	// Uploaded files never change, everything else is not cached
	if _, isDisk := files.(*storage.DiskStorage); isDisk && strings.HasPrefix(config.UPLOAD_URL, "/") {
		uploads := router.Group(config.UPLOAD_URL, (&utils.CacheRouter{CacheTime: utils.CacheOneDay}).Handler())
		uploads.Static("/", config.UPLOAD_PATH)
	}
	api := router.Group("/", (&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler())
	handlers.Register(api)

	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}

func newStorage() (storage.StorageAPI, error) {
	if config.S3_BUCKET != "" {
		return storage.NewS3Storage(storage.S3Config{
			Bucket:   config.S3_BUCKET,
			Region:   config.S3_REGION,
			Endpoint: config.S3_ENDPOINT,
			Key:      config.S3_KEY,
			Secret:   config.S3_SECRET,
			Prefix:   config.S3_PREFIX,
		})
	}
	return storage.NewDiskStorage(config.UPLOAD_PATH), nil
}

// exifLocation is nil (server local time) unless EXIF_TIME_ZONE names a valid zone
func exifLocation() *time.Location {
	if config.EXIF_TIME_ZONE == "" {
		return nil
	}
	location, err := time.LoadLocation(config.EXIF_TIME_ZONE)
	if err != nil {
		log.Printf("Invalid EXIF_TIME_ZONE %q: %v", config.EXIF_TIME_ZONE, err)
		return nil
	}
	return location
}
