package middleware

import (
	"log"
	"net/http"

	"github.com/AyushSingh360/Aryan-portfolio/internal/service"
	"github.com/gin-gonic/gin"
)

// Recovery turns a panic anywhere below it into the generic failure response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[%s] PANIC: %v", GetRequestID(c), err)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"message": service.ErrInternal.Message,
				})
			}
		}()
		c.Next()
	}
}
