package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"devflink/internal/errs"
)

// Validation limits for admin-edited fields, counted in characters.
const (
	maxTitleLen   = 300
	maxExcerptLen = 1_000
	maxBodyLen    = 100_000
	maxFieldLen   = 200
	maxURLLen     = 2_000
)

type field struct {
	name  string
	value string
	max   int
}

// validate reports the required fields that are blank, all together, and
// otherwise the first field over its limit.
func validate(required []string, fields ...field) error {
	var blank []string
	for _, f := range fields {
		for _, name := range required {
			if f.name == name && strings.TrimSpace(f.value) == "" {
				blank = append(blank, name)
			}
		}
	}
	if err := errs.Missing(blank...); err != nil {
		return err
	}

	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > f.max {
			return errs.Invalid(f.name, fmt.Sprintf("%s is too long (max %d characters)", f.name, f.max))
		}
	}
	return nil
}
