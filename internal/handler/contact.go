package handler

import (
	"log"
	"net/http"

	"github.com/AyushSingh360/Aryan-portfolio/internal/middleware"
	"github.com/AyushSingh360/Aryan-portfolio/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	// Far above the largest valid name and message; email length is unbounded
	maxBodyBytes   = 1 << 20
	successMessage = "Message sent successfully! I will get back to you soon."
)

type ContactHandler struct {
	service *service.ContactService
}

func NewContactHandler(service *service.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Handles POST /api/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	meta := service.RequestMeta{
		CallerID:  middleware.GetCallerID(c),
		RequestID: middleware.GetRequestID(c),
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	err := h.service.Submit(c.Request.Context(), meta, body)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"message": successMessage})
		return
	}

	status := statusFor(service.KindOf(err))
	if status == http.StatusInternalServerError {
		log.Printf("[%s] Contact form error: %v", meta.RequestID, err)
	}

	c.JSON(status, gin.H{"message": service.PublicMessage(err)})
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
