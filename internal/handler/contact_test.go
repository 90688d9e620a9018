package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AyushSingh360/Aryan-portfolio/internal/models"
	"github.com/AyushSingh360/Aryan-portfolio/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	sent []models.Notification
	err  error
}

func (s *stubNotifier) Send(ctx context.Context, n models.Notification) error {
	s.sent = append(s.sent, n)
	return s.err
}

func setupContactRouter(n *stubNotifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewContactHandler(service.NewContactService(n))
	router.POST("/api/contact", h.Submit)
	return router
}

func postContact(router *gin.Engine, body string) (*httptest.ResponseRecorder, map[string]string) {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestContactHandler_Success(t *testing.T) {
	n := &stubNotifier{}
	router := setupContactRouter(n)

	w, resp := postContact(router, `{"name":"Jane Doe","email":"jane@example.com","message":"Hello there, friend!"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Message sent successfully! I will get back to you soon.", resp["message"])
	require.Len(t, n.sent, 1)
	assert.Equal(t, "Jane Doe", n.sent[0].Name)
}

func TestContactHandler_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "missing message",
			body:    `{"name":"Jane Doe","email":"jane@example.com"}`,
			message: "Missing required fields",
		},
		{
			name:    "empty name",
			body:    `{"name":"","email":"jane@example.com","message":"Hello there, friend!"}`,
			message: "Missing required fields",
		},
		{
			name:    "numeric name",
			body:    `{"name":42,"email":"jane@example.com","message":"Hello there, friend!"}`,
			message: "Invalid field types",
		},
		{
			name:    "bad email",
			body:    `{"name":"Jane Doe","email":"jane@example","message":"Hello there, friend!"}`,
			message: "Invalid email address",
		},
		{
			name:    "short name",
			body:    `{"name":"J","email":"jane@example.com","message":"Hello there, friend!"}`,
			message: "Name must be between 2 and 100 characters",
		},
		{
			name:    "short message",
			body:    `{"name":"Jane Doe","email":"jane@example.com","message":"Hi"}`,
			message: "Message must be between 10 and 5000 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &stubNotifier{}
			router := setupContactRouter(n)

			w, resp := postContact(router, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, resp["message"])
			assert.Empty(t, n.sent)
		})
	}
}

func TestContactHandler_MalformedJSON(t *testing.T) {
	router := setupContactRouter(&stubNotifier{})

	w, resp := postContact(router, `{"name":`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An error occurred. Please try again.", resp["message"])
}

func TestContactHandler_NotifierFailure(t *testing.T) {
	router := setupContactRouter(&stubNotifier{err: errors.New("relay down")})

	w, resp := postContact(router, `{"name":"Jane Doe","email":"jane@example.com","message":"Hello there, friend!"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An error occurred. Please try again.", resp["message"])
	assert.NotContains(t, w.Body.String(), "relay down")
}

func TestContactHandler_LongEmailAccepted(t *testing.T) {
	n := &stubNotifier{}
	router := setupContactRouter(n)

	email := strings.Repeat("a", 100<<10) + "@example.com"
	w, resp := postContact(router, `{"name":"Jane Doe","email":"`+email+`","message":"Hello there, friend!"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Message sent successfully! I will get back to you soon.", resp["message"])
	require.Len(t, n.sent, 1)
	assert.Equal(t, email, n.sent[0].Email)
}

func TestContactHandler_BodyOverCapIsInternal(t *testing.T) {
	n := &stubNotifier{}
	router := setupContactRouter(n)

	email := strings.Repeat("a", maxBodyBytes) + "@example.com"
	w, resp := postContact(router, `{"name":"Jane Doe","email":"`+email+`","message":"Hello there, friend!"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An error occurred. Please try again.", resp["message"])
	assert.Empty(t, n.sent)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(service.KindValidation))
	assert.Equal(t, http.StatusTooManyRequests, statusFor(service.KindRateLimited))
	assert.Equal(t, http.StatusInternalServerError, statusFor(service.KindInternal))
}
