package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// MaxMessageSize is the platform limit for an outgoing message in bytes
const MaxMessageSize = 4096

const truncationMarker = "\n[...]"

// NormalizeText canonicalizes message text for comparison: it trims
// surrounding whitespace, case-folds and collapses every internal
// whitespace run to a single space. Whitespace-only input yields "".
func NormalizeText(raw string) string {
	if raw == "" {
		return ""
	}
	// Casers keep state and must not be shared between goroutines
	folded := cases.Fold().String(raw)
	return strings.Join(strings.Fields(folded), " ")
}

// TextProcessor prepares text that the bot sends back to a chat
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	cut := maxSize - len(truncationMarker)
	if cut < 0 {
		cut = 0
	}
	truncated := text[:cut]

	// Drop a trailing partial rune
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + truncationMarker
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				continue
			}
		}
		result = append(result, r)
	}

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(string(result))))

	return string(result)
}

// ProcessText sanitizes and truncates a reply to the platform limit
func (tp *TextProcessor) ProcessText(text string) string {
	return tp.TruncateText(tp.SanitizeUTF8(text), MaxMessageSize)
}
