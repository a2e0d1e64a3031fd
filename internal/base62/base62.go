// Package base62 derives short codes from numeric link identities.
// A code is the base-62 representation of the database ID, which makes
// generation deterministic and collision-free without a reservation table.
package base62

import (
	"fmt"
	"strings"
)

// alphabet orders digits before uppercase before lowercase, so codes sort
// the same way the underlying identities do.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = uint64(len(alphabet))

// Encode returns the base-62 representation of n, most significant symbol
// first. Encode(0) == "0"; there are no leading zero symbols otherwise.
func Encode(n uint64) string {
	if n == 0 {
		return string(alphabet[0])
	}

	// 11 symbols cover the full uint64 range.
	buf := make([]byte, 0, 11)
	for n > 0 {
		buf = append(buf, alphabet[n%base])
		n /= base
	}

	// Digits come out least significant first; reverse in place.
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// Decode inverts Encode. It rejects empty strings and symbols outside the
// alphabet, which also makes it usable as a cheap syntactic check on
// inbound short codes.
func Decode(code string) (uint64, error) {
	if code == "" {
		return 0, fmt.Errorf("base62: empty code")
	}
	var n uint64
	for i := 0; i < len(code); i++ {
		idx := strings.IndexByte(alphabet, code[i])
		if idx < 0 {
			return 0, fmt.Errorf("base62: invalid symbol %q in code %q", code[i], code)
		}
		n = n*base + uint64(idx)
	}
	return n, nil
}

// Valid reports whether code is a well-formed base-62 string.
func Valid(code string) bool {
	_, err := Decode(code)
	return err == nil
}
