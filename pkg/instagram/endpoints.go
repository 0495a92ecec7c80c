package instagram

import (
	"fmt"
	"strings"
)

// BaseURL is the base URL for Instagram
const BaseURL = "https://www.instagram.com"

// IsCDNHost reports whether host belongs to one of the CDN families that
// serve post images. The classifier carries its own copy of this knowledge
// so it stays free of package dependencies.
func IsCDNHost(host string) bool {
	return strings.Contains(host, "cdninstagram.com") ||
		strings.Contains(host, "fbcdn.net") ||
		strings.HasSuffix(host, "instagram.com")
}

// GetUserProfileURL constructs the public profile URL for a user
func GetUserProfileURL(username string) string {
	if username == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/", BaseURL, username)
}

// IsValidUsername checks if a username is valid according to Instagram rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}

	// Instagram usernames can only contain letters, numbers, periods, and underscores
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeUsername removes any invalid characters from a username
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}

	// Remove @ symbol if present at the beginning
	if username[0] == '@' {
		username = username[1:]
	}

	// Remove any trailing slashes or spaces
	for len(username) > 0 && (username[len(username)-1] == '/' || username[len(username)-1] == ' ') {
		username = username[:len(username)-1]
	}

	return username
}
