package utils

import (
	"strconv"
	"strings"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return i
}

// NonNegativeInt parses s and clamps negatives and garbage to 0.
func NonNegativeInt(s string) int {
	if i := StringToInt(s); i > 0 {
		return i
	}
	return 0
}
