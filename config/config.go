package config

import (
	"os"
	"strconv"
	"strings"
)

var (
	TLS_DOMAINS  = ""          // e.g. "example.com,example2.com"
	MYSQL_DSN    = ""          // MySQL will be used if this is set
	POSTGRES_DSN = ""          // Postgres will be used if MYSQL_DSN is not set and this is
	SQLITE_FILE  = "catmap.db" // SQLite is the fallback when neither DSN is configured
	BIND_ADDRESS = "0.0.0.0:8080"
	DEBUG_MODE   = true
	// Uploads. UPLOAD_URL maps 1:1 to UPLOAD_PATH, if it starts with "/" the files are served by us
	UPLOAD_PATH        = "uploads/"
	UPLOAD_URL         = "/uploads/"
	THUMBNAIL_SIZE     = 200 // shortest side, in pixels
	THUMBNAIL_QUALITY  = 75
	MAX_UPLOAD_MB      = 64
	EXIF_TIME_ZONE     = ""    // IANA name used to read EXIF times, defaults to the server local zone
	EXIF_ZONE_FROM_GPS = false // Prefer the time zone at the photo GPS position when available
	// S3 storage is used instead of UPLOAD_PATH on disk when S3_BUCKET is set
	S3_BUCKET   = ""
	S3_REGION   = "us-east-1"
	S3_ENDPOINT = "" // for S3 compatible services
	S3_KEY      = ""
	S3_SECRET   = ""
	S3_PREFIX   = "" // key prefix inside the bucket
	// Where the map is centred for a new observation
	DEFAULT_LAT  = 60.1699
	DEFAULT_LNG  = 24.9384
	DEFAULT_ZOOM = 15
)

func init() {
	Load()
}

// Load (re)reads all settings from the environment
func Load() {
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("POSTGRES_DSN", &POSTGRES_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("UPLOAD_PATH", &UPLOAD_PATH)
	readEnvString("UPLOAD_URL", &UPLOAD_URL)
	readEnvInt("THUMBNAIL_SIZE", &THUMBNAIL_SIZE)
	readEnvInt("THUMBNAIL_QUALITY", &THUMBNAIL_QUALITY)
	readEnvInt("MAX_UPLOAD_MB", &MAX_UPLOAD_MB)
	readEnvString("EXIF_TIME_ZONE", &EXIF_TIME_ZONE)
	readEnvBool("EXIF_ZONE_FROM_GPS", &EXIF_ZONE_FROM_GPS)
	readEnvString("S3_BUCKET", &S3_BUCKET)
	readEnvString("S3_REGION", &S3_REGION)
	readEnvString("S3_ENDPOINT", &S3_ENDPOINT)
	readEnvString("S3_KEY", &S3_KEY)
	readEnvString("S3_SECRET", &S3_SECRET)
	readEnvString("S3_PREFIX", &S3_PREFIX)
	readEnvFloat("DEFAULT_LAT", &DEFAULT_LAT)
	readEnvFloat("DEFAULT_LNG", &DEFAULT_LNG)
	readEnvInt("DEFAULT_ZOOM", &DEFAULT_ZOOM)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvFloat(name string, value *float64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return
	}
	*value = f
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}
