// Package playground implements the interactive testing engine: variable
// extraction and collection for templated prompts, context composition,
// and the session controller that streams provider responses into a
// conversation transcript.
package playground

import "regexp"

// placeholderRe matches {{name}} tokens with word-character names.
// Placeholders containing other characters are not recognized.
var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ExtractVariables returns the distinct variable names referenced by
// {{name}} placeholders in template, in order of first appearance.
func ExtractVariables(template string) []string {
	matches := placeholderRe.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
