package utils

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// NormalizeInput trims and folds full-width characters to their narrow forms.
func NormalizeInput(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// ParseID parses a positive integer id from user input, tolerating full-width digits.
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(NormalizeInput(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
