package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	CacheNoCache = 0
	CacheCustom  = -1
	CacheOneDay  = 86400
)

// CacheRouter sets the cache-control header, the handlers can still override it
type CacheRouter struct {
	CacheTime int // seconds, defaults to CacheNoCache
}

func (cr *CacheRouter) Handler() gin.HandlerFunc {
	header := ""
	switch {
	case cr.CacheTime == CacheNoCache:
		header = "no-cache"
	case cr.CacheTime > 0:
		header = "private, max-age=" + strconv.Itoa(cr.CacheTime)
	}
	return func(c *gin.Context) {
		if header != "" {
			c.Header("cache-control", header)
		}
		c.Next()
	}
}
