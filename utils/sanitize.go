package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content, keeping common user-generated markup.
// Used for admin-authored short responses.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizeText strips all markup. Visitor message bodies are plain text.
func SanitizeText(input string) string {
	return strictPolicy.Sanitize(input)
}
