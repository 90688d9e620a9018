package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		caller := GetCallerID(c)
		if caller == "" {
			caller = CallerID(c.Request)
		}

		log.Printf("[%s] %s %s - %d - %v - %s",
			GetRequestID(c),
			method,
			path,
			c.Writer.Status(),
			time.Since(start),
			caller,
		)
	}
}
