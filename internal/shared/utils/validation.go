package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxSchemaSize  = 4 * 1024 * 1024 // raw schema documents
	MaxPromptSize  = 16 * 1024       // single AI prompt
	MaxSchemaDepth = 64              // JSON nesting of a schema document
)

// String length limits
const (
	MaxIDLength   = 128
	MaxNameLength = 256
	MaxPathLength = 512
)

var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateSize checks data against maxSize
func ValidateSize(data []byte, maxSize int) error {
	if len(data) > maxSize {
		return fmt.Errorf("document size %d bytes exceeds maximum %d bytes", len(data), maxSize)
	}
	return nil
}

// ValidateJSONDepth checks if decoded JSON nesting depth is within limits
func ValidateJSONDepth(data any, maxDepth int) error {
	return checkDepth(data, 0, maxDepth)
}

func checkDepth(data any, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("JSON nesting depth %d exceeds maximum %d", currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]any:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []any:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateString validates string length and required status
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	trimmed := strings.TrimSpace(value)

	if required && trimmed == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if !required && trimmed == "" {
		return nil
	}

	length := utf8.RuneCountInString(trimmed)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must be at most %d characters", fieldName, maxLen)
	}
	return nil
}

// ValidateID validates an identifier (alphanumeric, hyphens, underscores)
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}
	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}
	return nil
}

// ValidateName validates a display name
func ValidateName(name, fieldName string) error {
	return ValidateString(name, fieldName, 1, MaxNameLength, true)
}

// ValidatePagePath validates a route path such as /demo
func ValidatePagePath(path string) error {
	if err := ValidateString(path, "path", 1, MaxPathLength, true); err != nil {
		return err
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path must start with /")
	}
	return nil
}

// ValidatePrompt validates an AI prompt
func ValidatePrompt(prompt string) error {
	return ValidateString(prompt, "prompt", 1, MaxPromptSize, true)
}
