// Package keys builds and parses object keys. The object key is the only
// carrier of ownership information: "<folder>/<ownerId>/<timestamp>_<file>"
// or "<ownerId>/<timestamp>_<file>" when no folder was given. Everything here
// is pure and deterministic.
package keys

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	maxFileNameLength = 255
	maxFolderLength   = 64
	maxOwnerIDLength  = 128

	// fallbackFileName is used when sanitization strips a name to nothing.
	fallbackFileName = "file"
	fallbackOwnerID  = "unknown"
)

var (
	// Allow alphanumeric, dash, underscore, dot; no path separators or nulls.
	unsafeFileChars   = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	unsafeFolderChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	slashRuns         = regexp.MustCompile(`/+`)
)

// SanitizeFileName reduces a user-supplied file name to a safe base name:
// path components and NUL bytes are stripped, disallowed characters removed,
// and the result capped at 255 characters. The output is never empty and
// never contains a path separator.
func SanitizeFileName(name string) string {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.ReplaceAll(base, "\x00", "")
	base = unsafeFileChars.ReplaceAllString(base, "")
	if len(base) > maxFileNameLength {
		base = base[:maxFileNameLength]
	}
	if base == "" {
		return fallbackFileName
	}
	return base
}

// SanitizeFolder reduces an optional folder segment to a single safe segment.
// Traversal sequences and absolute paths are rejected outright. An empty
// result means "no folder", not an error.
func SanitizeFolder(folder string) string {
	s := strings.TrimSpace(folder)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "..") || strings.HasPrefix(s, "/") || strings.HasPrefix(s, `\`) {
		return ""
	}
	s = unsafeFolderChars.ReplaceAllString(s, "")
	if len(s) > maxFolderLength {
		s = s[:maxFolderLength]
	}
	return s
}

// BuildObjectKey joins folder, owner, and "<timestamp>_<fileName>" into an
// object key. folder and fileName must already be sanitized. tsMillis is the
// creation instant in epoch milliseconds; uniqueness relies on
// timestamp+filename per owner, so same-millisecond uploads of the same name
// collide.
func BuildObjectKey(folder, ownerID, fileName string, tsMillis int64) string {
	owner := unsafeFileChars.ReplaceAllString(ownerID, "")
	if len(owner) > maxOwnerIDLength {
		owner = owner[:maxOwnerIDLength]
	}
	if owner == "" {
		owner = fallbackOwnerID
	}

	parts := make([]string, 0, 3)
	if folder != "" {
		parts = append(parts, folder)
	}
	parts = append(parts, owner, fmt.Sprintf("%d_%s", tsMillis, fileName))
	return slashRuns.ReplaceAllString(strings.Join(parts, "/"), "/")
}

// BelongsToUser reports whether objectKey encodes ownership by userID.
// The owner segment is positional: segment 0 of a two-segment key, segment 1
// otherwise — extra leading segments beyond the first are never inspected.
// Keys containing traversal sequences, NUL bytes, or invalid percent
// escapes are always rejected.
func BelongsToUser(objectKey, userID string) bool {
	if objectKey == "" {
		return false
	}
	if strings.Contains(objectKey, "..") || strings.Contains(objectKey, "\x00") {
		return false
	}
	decoded, err := url.PathUnescape(objectKey)
	if err != nil {
		return false
	}
	decoded = slashRuns.ReplaceAllString(decoded, "/")

	var segments []string
	for _, seg := range strings.Split(decoded, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	switch {
	case len(segments) == 2:
		return segments[0] == userID
	case len(segments) >= 3:
		return segments[1] == userID
	default:
		return false
	}
}
