package repo

import (
	"bytes"
	"path/filepath"
	"strings"
)

// packageFileNames lists the fixed priority order the scanner looks
// for within a candidate package directory (spec.md §4.3).
var packageFileNames = []string{"package.py", "package.yaml", "package.yml", "package.json"}

// excludedDirNames are skipped outright during the phase 1 walk.
var excludedDirNames = map[string]bool{
	".git":         true,
	"__pycache__":  true,
	"node_modules": true,
	".vscode":      true,
	".idea":        true,
}

func isExcludedDir(name string) bool {
	if excludedDirNames[name] {
		return true
	}
	return strings.HasPrefix(name, ".")
}

// formatHintFor maps a package file name to the loader format hint.
func formatHintFor(name string) (hint string, ok bool) {
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return "yaml", true
	case ".json":
		return "json", true
	case ".py":
		return "py", true
	}
	return "", false
}

// looksLikePackageFile cheaply sniffs the first bytes of a file for a
// name assignment in any of the three supported syntaxes, letting the
// scanner skip non-package files before running a full parse.
func looksLikePackageFile(head []byte) bool {
	for _, marker := range [][]byte{[]byte("name ="), []byte(`"name":`), []byte("name:")} {
		if bytes.Contains(head, marker) {
			return true
		}
	}
	return false
}
