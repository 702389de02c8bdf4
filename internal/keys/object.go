package keys

import (
	"fmt"
	"path"
	"strings"
)

// Report derives the object key a match report is stored under from the key
// of the photo dump that produced it. The mapping is deterministic, so a
// replayed storage event lands on the same key instead of a duplicate.
func Report(sourceKey string) string {
	base := strings.TrimSuffix(path.Base(sourceKey), path.Ext(sourceKey))
	return fmt.Sprintf("reports/%s.json", sanitize(base))
}

// sanitize replaces spaces with hyphens and lowercases the name to keep object
// keys portable.
func sanitize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", "-"))
}
