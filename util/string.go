package util

import (
	"fmt"
	"strings"
)

// JoinString renders each element with String() and joins them with sep
func JoinString[A fmt.Stringer](elems []A, sep string) string {
	sb := strings.Builder{}
	for i, elem := range elems {
		if i != 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(elem.String())
	}
	return sb.String()
}

// Strings renders each element with String(). It returns nil for an empty slice.
func Strings[A fmt.Stringer](elems []A) []string {
	if len(elems) == 0 {
		return nil
	}
	result := make([]string, len(elems))
	for i, elem := range elems {
		result[i] = elem.String()
	}
	return result
}
