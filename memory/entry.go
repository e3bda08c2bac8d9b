package memory

import (
	"fmt"
	"path"
	"strings"
)

// NamespaceTranscripts holds one rendered document per completed session.
const NamespaceTranscripts = "transcripts"

// Entry is a key-value pair in the archive.
type Entry struct {
	Key   string
	Value []byte
}

// TranscriptKey returns the archive key for a session's rendered document.
func TranscriptKey(accountID, contact string) string {
	return path.Join(NamespaceTranscripts, segment(accountID), segment(contact)+".txt")
}

func segment(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

// validateKey rejects keys that would escape the archive root.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
