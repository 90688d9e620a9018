package models

import "time"

// Submission is one contact form payload after its fields were checked to be
// present and textual. Lengths are counted in UTF-16 code units.
type Submission struct {
	Name    string `json:"name" validate:"utf16min=2,utf16max=100"`
	Email   string `json:"email" validate:"contact_email"`
	Message string `json:"message" validate:"utf16min=10,utf16max=5000"`
}

// Notification is what gets handed to the outbound transport once a
// submission is accepted.
type Notification struct {
	Name       string
	Email      string
	Message    string
	CallerID   string
	RequestID  string
	ReceivedAt time.Time
}
