package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"
	"unicode/utf16"

	"github.com/AyushSingh360/Aryan-portfolio/internal/models"
	"github.com/AyushSingh360/Aryan-portfolio/internal/notify"
	"github.com/go-playground/validator/v10"
)

// local@domain.tld where no part holds whitespace or '@'. The class matches
// what a browser's \s does: Go's \s plus \v, the Unicode separators and the
// byte order mark.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// RequestMeta carries what the transport layer knows about the caller.
type RequestMeta struct {
	CallerID  string
	RequestID string
}

type ContactService struct {
	notifier notify.Notifier
	validate *validator.Validate
	now      func() time.Time
}

func NewContactService(notifier notify.Notifier) *ContactService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("utf16min", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && utf16Len(fl.Field().String()) >= n
	})
	v.RegisterValidation("utf16max", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && utf16Len(fl.Field().String()) <= n
	})

	return &ContactService{
		notifier: notifier,
		validate: v,
		now:      time.Now,
	}
}

// Submit parses, validates and delivers one contact submission. The returned
// error is always a *SubmissionError.
func (s *ContactService) Submit(ctx context.Context, meta RequestMeta, body io.Reader) error {
	sub, err := s.Parse(body)
	if err != nil {
		return err
	}

	notification := models.Notification{
		Name:       sub.Name,
		Email:      sub.Email,
		Message:    sub.Message,
		CallerID:   meta.CallerID,
		RequestID:  meta.RequestID,
		ReceivedAt: s.now().UTC(),
	}

	if err := s.notifier.Send(ctx, notification); err != nil {
		return internal(fmt.Errorf("deliver submission: %w", err))
	}

	return nil
}

// Parse decodes body and runs the presence, type, format and length checks in
// that order, stopping at the first failure.
func (s *ContactService) Parse(body io.Reader) (*models.Submission, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, internal(fmt.Errorf("read body: %w", err))
	}

	// UseNumber keeps out-of-range numbers such as 1e400 from failing the decode
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, internal(fmt.Errorf("decode body: %w", err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, internal(errors.New("decode body: unexpected data after JSON value"))
	}
	if payload == nil {
		return nil, internal(errors.New("body is null"))
	}

	// Any JSON value other than an object simply has no fields
	fields, _ := payload.(map[string]any)
	name, email, message := fields["name"], fields["email"], fields["message"]

	if !present(name) || !present(email) || !present(message) {
		return nil, ErrMissingFields
	}

	nameStr, ok1 := name.(string)
	emailStr, ok2 := email.(string)
	messageStr, ok3 := message.(string)
	if !ok1 || !ok2 || !ok3 {
		return nil, ErrInvalidTypes
	}

	sub := &models.Submission{Name: nameStr, Email: emailStr, Message: messageStr}
	if err := s.check(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *ContactService) check(sub *models.Submission) error {
	err := s.validate.Struct(sub)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return internal(err)
	}

	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.StructField()] = true
	}

	switch {
	case failed["Email"]:
		return ErrInvalidEmail
	case failed["Name"]:
		return ErrNameLength
	case failed["Message"]:
		return ErrMessageLength
	default:
		return internal(err)
	}
}

// present reports whether a decoded JSON value counts as supplied: missing,
// null, "", false and 0 do not.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case json.Number:
		// Out-of-range values parse to ±Inf or 0 alongside a range error
		f, _ := strconv.ParseFloat(x.String(), 64)
		return f != 0
	default:
		return true
	}
}

// utf16Len measures s the way a browser's String.length does.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}
