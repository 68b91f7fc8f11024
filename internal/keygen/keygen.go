package keygen

// Package keygen derives storage object keys. A key is a fixed prefix, a
// freshly generated UUID, and the sanitized extension of the original
// filename. Nothing else from the user-supplied name ever reaches a key, so
// no user-controlled path or character sequence becomes a storage address.

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxExtLen caps the carried-over extension, dot included.
const maxExtLen = 10

// New returns a collision-resistant storage key of the form
// <prefix><uuid><ext>. Collisions across concurrent calls are as unlikely
// as UUID collisions.
func New(prefix, originalName string) string {
	return prefix + uuid.NewString() + sanitizeExt(filepath.Ext(originalName))
}

// sanitizeExt lowercases the extension and strips everything outside
// [a-z0-9]. An extension that sanitizes to nothing is omitted entirely.
func sanitizeExt(ext string) string {
	if ext == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToLower(ext) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	out := "." + b.String()
	if len(out) > maxExtLen {
		out = out[:maxExtLen]
	}
	return out
}
