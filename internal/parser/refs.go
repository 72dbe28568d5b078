package parser

import "regexp"

// refRe matches "[[cm.hash]]" with an optional "|display" alias.
var refRe = regexp.MustCompile(`\[\[(cm\.[a-z0-9]+)(?:\|[^\]]*)?\]\]`)

// ExtractRefs returns the note ids referenced in text, deduplicated in
// encounter order. Aliased references ("[[cm.x|label]]") resolve to the id.
func ExtractRefs(text string) []string {
	matches := refRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		id := m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
