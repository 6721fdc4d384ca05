package common

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatInt encodes v as lowercase hex text with the "0x" prefix, the wire
// encoding of all integer parameters.
func FormatInt(v int64) string {
	if v < 0 {
		return "-" + HashPrefix + strconv.FormatInt(-v, 16)
	}
	return HashPrefix + strconv.FormatInt(v, 16)
}

// ParseInt decodes the "0x"-prefixed lowercase hex integer encoding.
func ParseInt(s string) (int64, error) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, HashPrefix) {
		return 0, fmt.Errorf("%w: integer %q lacks %q prefix", ErrInvalidParameter, s, HashPrefix)
	}
	digits := s[len(HashPrefix):]
	if digits == "" || strings.ContainsAny(digits, "ABCDEF") {
		return 0, fmt.Errorf("%w: integer %q has invalid digits", ErrInvalidParameter, s)
	}
	v, err := strconv.ParseInt(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: integer %q: %v", ErrInvalidParameter, s, err)
	}
	if neg {
		v = -v
	}
	return v, nil
}
