package engine

import "strings"

// parseIntrinsicCall recognizes the textual "name(inner)" shape the Q
// and Φ regimes use to spell host intrinsics inside an otherwise
// ordinary Let expression string. It requires a non-empty, trimmed
// inner argument and does not attempt to parse nested parentheses —
// the intrinsic set never needs them.
func parseIntrinsicCall(src string) (name, inner string, ok bool) {
	trimmed := strings.TrimSpace(src)
	if !strings.HasSuffix(trimmed, ")") {
		return "", "", false
	}
	open := strings.IndexByte(trimmed, '(')
	if open <= 0 {
		return "", "", false
	}
	name = trimmed[:open]
	inner = strings.TrimSpace(trimmed[open+1 : len(trimmed)-1])
	if inner == "" {
		return "", "", false
	}
	return name, inner, true
}
