package corpus

import (
	"regexp"
	"strings"
)

// speakerPattern matches transcript attribution lines such as
// "Lenny Rachitsky (00:03:41):" at the start of a line.
var speakerPattern = regexp.MustCompile(`(?m)^([A-Z][a-zA-Z\s]+)\s*\(\d+:\d+:\d+\):`)

// maxSpeakerHints caps how many names go into the context hint.
const maxSpeakerHints = 3

// ExtractSpeakers scans chunk text for speaker attribution lines and returns
// up to three distinct names as a comma-joined hint. This is a best-effort
// heuristic: no matches means an empty hint, never an error, and retrieval
// quality does not depend on it.
func ExtractSpeakers(text string) string {
	matches := speakerPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return ""
	}

	seen := make(map[string]struct{}, maxSpeakerHints)
	var names []string
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
		if len(names) == maxSpeakerHints {
			break
		}
	}
	return strings.Join(names, ", ")
}
