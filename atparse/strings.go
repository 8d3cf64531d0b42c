package atparse

import "bytes"

// IsError reports whether "ERROR" occurs anywhere in response (not
// anchored to the start — a deliberate quirk preserved for callers that
// pass extended strings like "+CME ERROR: 30" and expect a match).
func IsError(response []byte) bool {
	return containsAnywhere(response, []byte("ERROR"))
}

// IsOk reports whether "OK" occurs anywhere in response, same
// anywhere-in-the-string quirk as IsError.
func IsOk(response []byte) bool {
	return containsAnywhere(response, []byte("OK"))
}

func containsAnywhere(response, literal []byte) bool {
	if response == nil {
		return false
	}
	return bytes.Contains(response, literal)
}

// IsCMEError searches for "+CME ERROR: " and parses the signed decimal
// integer immediately following it into code. Returns false (and
// leaves code unchanged) if the marker is absent or no digits were
// consumed after it.
func IsCMEError(response []byte, code *int32) bool {
	return isNumericError(response, []byte("+CME ERROR: "), code)
}

// IsCMSError searches for "+CMS ERROR: " the same way IsCMEError
// searches for "+CME ERROR: ".
func IsCMSError(response []byte, code *int32) bool {
	return isNumericError(response, []byte("+CMS ERROR: "), code)
}

func isNumericError(response, marker []byte, code *int32) bool {
	if response == nil || code == nil {
		return false
	}
	i := bytes.Index(response, marker)
	if i < 0 {
		return false
	}
	rest := response[i+len(marker):]

	value, consumed, _, ok := scanSignedDecimal(rest)
	if !ok || consumed == 0 {
		return false
	}
	*code = int32(value)
	return true
}
