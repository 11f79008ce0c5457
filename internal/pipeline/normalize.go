package pipeline

import (
	"regexp"
	"strings"
)

var (
	separatorRuns = regexp.MustCompile(`[\s\-]+`)
	invalidChars  = regexp.MustCompile(`[^0-9A-Za-z_]+`)
	underscoreRun = regexp.MustCompile(`_+`)
)

// Normalize maps an arbitrary column label to a canonical snake_case
// identifier. It is pure and total: any input yields some identifier,
// possibly empty. Collisions between distinct labels are the cleaner's
// problem, not this function's.
func Normalize(label string) string {
	name := strings.TrimSpace(label)
	name = separatorRuns.ReplaceAllString(name, "_")
	name = invalidChars.ReplaceAllString(name, "")
	name = underscoreRun.ReplaceAllString(name, "_")
	return strings.ToLower(name)
}
