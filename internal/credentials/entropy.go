// SPDX-License-Identifier: Apache-2.0

package credentials

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="
	hexChars    = "0123456789ABCDEFabcdef"
	base36Chars = "abcdefghijklmnopqrstuvwxyz1234567890"
)

// ShannonEntropy computes the entropy of data restricted to the characters of charset.
func ShannonEntropy(data, charset string) float64 {
	if data == "" {
		return 0
	}
	n := float64(utf8.RuneCountInString(data))
	entropy := 0.0
	for _, c := range charset {
		px := float64(strings.Count(data, string(c))) / n
		if px > 0 {
			entropy += -px * math.Log2(px)
		}
	}
	return entropy
}

// IsEntropyValidate reports whether value looks random enough in any of the
// base64, hex or base36 alphabets. An absent value never validates.
func IsEntropyValidate(value *string) bool {
	if value == nil {
		return false
	}
	return ShannonEntropy(*value, base64Chars) > 4.5 ||
		ShannonEntropy(*value, hexChars) > 3 ||
		ShannonEntropy(*value, base36Chars) > 3
}
