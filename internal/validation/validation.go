package validation

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ModelIDPattern defines the valid model identifier format: an optional
// owner segment and a name, each alphanumeric with dots, hyphens and underscores.
var ModelIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*(/[A-Za-z0-9][A-Za-z0-9._-]*)?$`)

// ValidateModelID checks if a model identifier is safe to place in a URL path.
func ValidateModelID(id string) bool {
	if id == "" || len(id) > 200 || strings.Contains(id, "..") {
		return false
	}
	return ModelIDPattern.MatchString(id)
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// ValidateFeedback checks a feedback text before analysis.
func ValidateFeedback(text string) (bool, string) {
	if strings.TrimSpace(text) == "" {
		return false, "Please enter some feedback to analyze"
	}
	if !utf8.ValidString(text) {
		return false, "Feedback must be valid UTF-8 text"
	}
	return true, ""
}

// ValidateUpload checks an uploaded batch file's name and size.
func ValidateUpload(filename string, size int64, maxBytes int) (bool, string) {
	if filename == "" {
		return false, "A CSV file is required"
	}
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return false, "Only .csv files are supported"
	}
	if size <= 0 {
		return false, "The uploaded file is empty"
	}
	if maxBytes > 0 && size > int64(maxBytes) {
		return false, fmt.Sprintf("The uploaded file exceeds the %d byte limit", maxBytes)
	}
	return true, ""
}

// TruncateRunes cuts text to at most max characters (Unicode code points).
// A non-positive max leaves the text untouched.
func TruncateRunes(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	i := 0
	for pos := range text {
		if i == max {
			return text[:pos]
		}
		i++
	}
	return text
}
