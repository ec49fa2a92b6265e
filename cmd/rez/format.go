package main

import (
	"sort"
	"strings"

	"github.com/rez-project/rez/resolve"
)

func sortedResolvedNames(result *resolve.ResolutionResult) []string {
	names := make([]string, 0, len(result.ResolvedPackages))
	for name := range result.ResolvedPackages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func joinRequiredBy(by []string) string {
	out := make([]string, len(by))
	for i, b := range by {
		if b == "" {
			out[i] = "(top-level)"
			continue
		}
		out[i] = b
	}
	return strings.Join(out, ", ")
}
