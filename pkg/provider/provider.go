// Package provider holds the dependency lookup backends shared by the
// analysis pipeline: a live PyPI registry client and a filesystem fixture
// backend for offline runs. Both implement the graph engine's Provider
// interface and normalize package names before comparison.
package provider

import (
	"regexp"
	"strings"
)

var separatorRE = regexp.MustCompile(`[-_.]+`)

// Normalize canonicalizes a Python package name following PEP 503:
// lowercase, with every run of ".", "-", or "_" folded into a single
// hyphen. All backends apply it before comparing or returning names, so
// the engine sees one spelling per package.
func Normalize(name string) string {
	return separatorRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
