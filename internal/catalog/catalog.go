package catalog

import (
	"strings"
)

// Color is a named color option. IDs are assigned by the server.
type Color struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RecordID returns the server-assigned identifier.
func (c Color) RecordID() int64 { return c.ID }

// Label returns the text shown in lists and selectors.
func (c Color) Label() string { return c.Name }

// Size is a named size option. IDs are assigned by the server.
type Size struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RecordID returns the server-assigned identifier.
func (s Size) RecordID() int64 { return s.ID }

// Label returns the text shown in lists and selectors.
func (s Size) Label() string { return s.Name }

// ColorDraft is the body of a color create or update request.
type ColorDraft struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

// NewColorDraft builds a draft from raw form input.
func NewColorDraft(name string) ColorDraft {
	return ColorDraft{Name: strings.TrimSpace(name)}
}

// SizeDraft is the body of a size create or update request.
type SizeDraft struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

// NewSizeDraft builds a draft from raw form input.
func NewSizeDraft(name string) SizeDraft {
	return SizeDraft{Name: strings.TrimSpace(name)}
}
