package repo

import (
	"regexp"
	"strings"
)

// compileGlob translates a '*'/'?' glob pattern into an anchored
// regular expression, per spec.md §4.3's FindPackages contract.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
