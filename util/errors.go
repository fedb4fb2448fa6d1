package util

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories shared by the image and printer packages. Callers wrap
// them with fmt.Errorf("...: %w", ...) and test them with errors.Is.
var (
	ErrInvalidImage   = errors.New("invalid image")
	ErrEncoding       = errors.New("encoding error")
	ErrConnection     = errors.New("connection error")
	ErrUnknownProfile = errors.New("unknown profile")
)

// Describe turns an error chain into a single line for the operator,
// prefixed with the category it belongs to.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	categories := []struct {
		target error
		prefix string
	}{
		{ErrInvalidImage, "IMAGE"},
		{ErrEncoding, "ENCODING"},
		{ErrConnection, "PRINTER"},
		{ErrUnknownProfile, "PROFILE"},
	}

	for _, c := range categories {
		if errors.Is(err, c.target) {
			return fmt.Sprintf("%s: %s", c.prefix, innermost(err.Error(), c.target))
		}
	}
	return fmt.Sprintf("ERROR: %s", err.Error())
}

// innermost drops the sentinel text from the message so that
// "connection error: dial tcp ...: refused" reads "dial tcp ...: refused".
func innermost(msg string, sentinel error) string {
	s := sentinel.Error()
	if i := strings.Index(msg, s+": "); i >= 0 {
		rest := msg[i+len(s)+2:]
		if head := strings.TrimSuffix(msg[:i], ": "); head != "" {
			return head + ": " + rest
		}
		return rest
	}
	return msg
}
