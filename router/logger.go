package router

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger regista método, rota, status e latência de cada request da API.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("api: %s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
