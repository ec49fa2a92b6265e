package version

// separatorBytes holds the four characters that may separate tokens
// in a rez version string. All four act as hard separators; none of
// them may appear as token content, which is what makes the "no
// underscore-bordered token" invariant automatically hold: an
// underscore can never be interior to a token, so it can never be at
// a token's edge either.
const separatorBytes = ".-_+"

// maxTokens bounds the number of tokens in a single version, and
// maxNumericTokens bounds how many of those may be numeric. Both
// exist purely to reject pathological inputs cheaply.
const (
	maxTokens        = 10
	maxNumericTokens = 5
)

func isSeparator(b byte) bool {
	return b == '.' || b == '-' || b == '_' || b == '+'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlpha(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isAlnum(b byte) bool {
	return isDigit(b) || isAlpha(b)
}
