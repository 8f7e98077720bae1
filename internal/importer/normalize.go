// Package importer implements the bulk card resolution pipeline: it
// turns a user-supplied list of card names into rate-governed Scryfall
// lookups, merges each resolved card into a target collection, and
// reports partial failures.
package importer

import "strings"

// SplitList splits a free-text block of newline-separated card names
// into normalized names.
func SplitList(text string) []string {
	return NormalizeNames(strings.Split(text, "\n"))
}

// NormalizeNames trims each raw name and drops blanks. Order is
// preserved and duplicates are kept: a name appearing twice yields two
// lookups and, on success, two merges.
func NormalizeNames(raw []string) []string {
	names := make([]string, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
