// Package mention finds @username references in user-written content.
package mention

import "regexp"

var pattern = regexp.MustCompile(`@(\w+)`)

// Extract returns the usernames mentioned in text, de-duplicated and in order of
// first appearance. Matching is case-sensitive.
func Extract(text string) []string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	usernames := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		usernames = append(usernames, name)
	}
	return usernames
}

// Set is Extract as a set.
func Set(text string) map[string]struct{} {
	names := Extract(text)
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
