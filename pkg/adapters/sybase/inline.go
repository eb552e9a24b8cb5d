package sybase

import "strings"

// Inline substitutes compiled bindings into the placeholders of skeleton.
//
// The skeleton is split on every "?" and the fragments are joined with the
// bindings in order. With fewer bindings than placeholders the remaining
// fragments are joined with nothing in between; extra bindings are ignored.
// This holds for an empty bindings slice too: every "?" is dropped. Every
// "[]" pair is removed from the result.
func Inline(skeleton string, bindings []CompiledBinding) string {
	parts := strings.Split(skeleton, "?")

	var sb strings.Builder
	sb.Grow(len(skeleton) + 16*len(bindings))

	for i, part := range parts {
		sb.WriteString(part)
		if i < len(parts)-1 && i < len(bindings) {
			sb.WriteString(bindings[i].Literal())
		}
	}

	return stripBrackets(sb.String())
}

func stripBrackets(s string) string {
	return strings.ReplaceAll(s, "[]", "")
}
