package job

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/newschat/internal/config"
)

var ErrInvalidInput = errors.New("invalid input")

// ValidateText rejects blank values and values longer than MaxQuestionLength runes.
func ValidateText(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s must not be blank", ErrInvalidInput, field)
	}
	if n := utf8.RuneCountInString(value); n > config.MaxQuestionLength {
		return fmt.Errorf("%w: %s has %d characters, limit is %d", ErrInvalidInput, field, n, config.MaxQuestionLength)
	}
	return nil
}
