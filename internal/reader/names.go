package reader

import "golang.org/x/text/unicode/norm"

// normName canonicalizes a name lifted from a container string property.
// Authoring tools disagree about unicode normalization of user-entered
// names; NFC keeps comparisons and reference keys stable.
func normName(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
