// Package httputil holds small helpers shared by HTTP handlers.
package httputil

import (
	"fmt"
	"mime"
	"strconv"
	"strings"
)

// ConvertToInt parses s and returns 0 when it is not a number
func ConvertToInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// ParseBool accepts 1, t, true, yes and on in any case
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// AttachmentDisposition returns a Content-Disposition header value for a download
func AttachmentDisposition(filename string) string {
	v := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if v == "" {
		return fmt.Sprintf("attachment; filename=%q", "download")
	}
	return v
}

// ContentType returns the media type served for a report format
func ContentType(format string) string {
	switch format {
	case "json", "sarif":
		return "application/json"
	case "markdown":
		return "text/markdown; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
