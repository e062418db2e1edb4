package webfont

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// FlattenText concatenates text given either as a string or as (nested)
// collections of strings, in traversal order.
func FlattenText(v any) (string, error) {
	var b strings.Builder
	if err := flattenText(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func flattenText(b *strings.Builder, v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		b.WriteString(t)
	case []string:
		for _, s := range t {
			b.WriteString(s)
		}
	case []any:
		for _, item := range t {
			if err := flattenText(b, item); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: text must be a string or a list of strings, got %T", ErrValidation, v)
	}
	return nil
}

// isSpace reports characters removed from subset text. The set is the
// one matched by \s in ECMAScript regular expressions so identical input
// keeps producing identical hashes.
func isSpace(r rune) bool {
	return r == '\uFEFF' || (r != '\u0085' && unicode.IsSpace(r))
}

// Canonicalize removes whitespace and duplicate code points from s and
// orders the rest by code point value. Any permutation or repetition of the
// same characters produces the same result.
func Canonicalize(s string) string {
	runes := make([]rune, 0, len(s))
	for _, r := range s {
		if !isSpace(r) {
			runes = append(runes, r)
		}
	}
	slices.Sort(runes)
	return string(slices.Compact(runes))
}

// Hash returns hex encoded MD5 of canonical text. It is used as a file name
// safe identifier of the subset.
func Hash(canonical string) string {
	sum := md5.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
