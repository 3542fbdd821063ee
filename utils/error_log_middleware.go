package utils

import (
	"log"

	"github.com/gin-gonic/gin"
)

type errorLogWriter struct {
	gin.ResponseWriter
	request string
}

func (w *errorLogWriter) Write(b []byte) (int, error) {
	if status := w.Status(); status >= 400 {
		log.Printf("[DEBUG ERROR] %s: status %d, body: %s", w.request, status, string(b))
	}
	return w.ResponseWriter.Write(b)
}

// ErrorLogMiddleware logs the body of every 4xx/5xx response.
// NOTE: it must be added before GZIP, otherwise the body is compressed
func ErrorLogMiddleware(c *gin.Context) {
	c.Writer = &errorLogWriter{
		ResponseWriter: c.Writer,
		request:        c.Request.Method + " " + c.Request.URL.Path,
	}
	c.Next()
}
