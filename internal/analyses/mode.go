package analyses

import (
	"errors"
	"strings"
)

// Mode defines how the analysis sources its input text.
type Mode string

const (
	// ModeDocument analyzes a single uploaded document.
	ModeDocument Mode = "document"
	// ModeMultiDocument cross-analyzes several documents together.
	ModeMultiDocument Mode = "multi_document"
	// ModeEnhancement rewrites and enriches an existing document.
	ModeEnhancement Mode = "enhancement"
	// ModeFreeForm runs from the objective alone, with no document.
	ModeFreeForm Mode = "free_form"
)

// ParseMode normalizes and validates a mode string. Empty defaults to document.
func ParseMode(raw string) (Mode, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "", string(ModeDocument):
		return ModeDocument, nil
	case string(ModeMultiDocument):
		return ModeMultiDocument, nil
	case string(ModeEnhancement):
		return ModeEnhancement, nil
	case string(ModeFreeForm):
		return ModeFreeForm, nil
	default:
		return "", errors.New("analysis mode is invalid")
	}
}

// RequiresDocument reports whether the mode needs at least one document.
func (m Mode) RequiresDocument() bool {
	return m != ModeFreeForm
}
