// Package naming holds the derivation rules that tie a document to its
// artifacts. Both the ingestion backend and the gateway route by these
// rules, so they live in one place: a drift between the two layers would
// silently break every text-related route.
package naming

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// TextExtension is the suffix of every derived text artifact.
const TextExtension = ".txt"

// Sanitize replaces every character outside [A-Za-z0-9._-] with an
// underscore. The result is safe to use as a filename on any platform.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// DocumentID derives the storage identifier for an upload: the upload
// timestamp in unix milliseconds joined to the sanitized client name.
// Two uploads of the same name in the same millisecond collide; the
// store overwrites and the service logs it.
func DocumentID(now time.Time, declaredName string) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + Sanitize(declaredName)
}

// Basename strips the final extension from an identifier.
func Basename(id string) string {
	return strings.TrimSuffix(id, filepath.Ext(id))
}

// TextArtifactID derives the name of the extracted-text artifact for a
// document. Routing relies on this derivation alone; the metadata index
// records the pairing but is never consulted to resolve it.
func TextArtifactID(documentID string) string {
	return Basename(documentID) + TextExtension
}
