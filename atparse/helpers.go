package atparse

import "bytes"

// HasPrefix reports whether prefix is a byte-exact prefix of response —
// an anchored "starts with" test, distinct from the substring-anywhere
// search the other parsers use internally (locatePrefix) to find a
// prefix occurring mid-line, e.g. after an echoed command.
//
// Both response and prefix nil returns false (mirrors the C NULL-safe
// contract: a NULL response or prefix cannot be searched). Both empty
// but non-nil returns true (an empty prefix trivially starts every
// string, including the empty string).
func HasPrefix(response, prefix []byte) bool {
	if response == nil || prefix == nil {
		return false
	}
	return bytes.HasPrefix(response, prefix)
}

// CountDelimiters counts the occurrences of ch in s. ch == 0 always
// returns 0 (there is no such thing as a NUL delimiter in a line-framed
// response).
func CountDelimiters(s []byte, ch byte) int {
	if ch == 0 {
		return 0
	}
	n := 0
	for _, b := range s {
		if b == ch {
			n++
		}
	}
	return n
}

// locatePrefix implements the shared parser discipline's lookup step:
// find prefix anywhere in response, advance past it, and skip leading
// SP/HT. Returns the remainder and false if prefix was not found (or
// either argument is nil).
func locatePrefix(response, prefix []byte) ([]byte, bool) {
	if response == nil || prefix == nil {
		return nil, false
	}
	i := bytes.Index(response, prefix)
	if i < 0 {
		return nil, false
	}
	rest := response[i+len(prefix):]
	return skipSpaceTab(rest), true
}

func skipSpaceTab(s []byte) []byte {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[i:]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) uint32 {
	switch {
	case b >= '0' && b <= '9':
		return uint32(b - '0')
	case b >= 'a' && b <= 'f':
		return uint32(b-'a') + 10
	default:
		return uint32(b-'A') + 10
	}
}

// writeTruncated copies as much of src into buf as fits in len(buf)-1
// bytes and always null-terminates, reporting whether truncation
// occurred. This is the shared tail of every string-producing parser:
// output is null-terminated unconditionally, even on error paths where
// partial data was written.
func writeTruncated(buf []byte, src []byte) (n int, truncated bool) {
	if len(buf) == 0 {
		return 0, len(src) > 0
	}
	limit := len(buf) - 1
	n = len(src)
	if n > limit {
		n = limit
		truncated = true
	}
	copy(buf[:n], src[:n])
	buf[n] = 0
	return n, truncated
}
