package validate

import (
	"strconv"
	"strings"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

// Digits checks that value is exactly n ASCII digits.
func Digits(field, value string, n int) *ErrField {
	if len(value) != n {
		return &ErrField{Field: field, Msg: "must be " + strconv.Itoa(n) + " digits"}
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return &ErrField{Field: field, Msg: "must be " + strconv.Itoa(n) + " digits"}
		}
	}
	return nil
}
