package utils

import (
	"strings"
)

// DownloadExtension is appended to product titles to name free downloads
const DownloadExtension = ".zip"

// DownloadFilename returns the suggested filename for a free download: title + ".zip"
func DownloadFilename(title string) string {
	return title + DownloadExtension
}

// SafeFilename makes a suggested filename usable as a single path element on disk.
// Path separators and control characters become '_'; an empty result becomes "download".
func SafeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r < 0x20:
			return '_'
		default:
			return r
		}
	}, strings.TrimSpace(name))

	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return "download"
	}
	return cleaned
}
