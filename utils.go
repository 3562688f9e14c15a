package wally

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	MaxNameLength    = 64
	MaxCommentLength = 2000
)

// ValidateComment checks the author name and text of a comment.
// It checks that:
//   - both are non-empty
//   - both are valid UTF-8
//   - name is at most MaxNameLength runes and text at most MaxCommentLength
//   - name contains no control characters
//   - text contains no control characters other than newline and tab
//
// Errors wrap ErrInvalidInput.
func ValidateComment(name, text string) error {
	if name == "" {
		return fmt.Errorf("validate comment: %w: username cannot be empty", ErrInvalidInput)
	}
	if text == "" {
		return fmt.Errorf("validate comment: %w: comment cannot be empty", ErrInvalidInput)
	}

	if !utf8.ValidString(name) || !utf8.ValidString(text) {
		return fmt.Errorf("validate comment: %w: invalid utf-8", ErrInvalidInput)
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("validate comment: %w: username longer than %d characters", ErrInvalidInput, MaxNameLength)
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return fmt.Errorf("validate comment: %w: comment longer than %d characters", ErrInvalidInput, MaxCommentLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("validate comment: %w: username contains control characters", ErrInvalidInput)
		}
	}
	for _, r := range text {
		if r != '\n' && r != '\t' && unicode.IsControl(r) {
			return fmt.Errorf("validate comment: %w: comment contains control characters", ErrInvalidInput)
		}
	}

	return nil
}
