package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// GetterAttribute reports whether op is a parameterless getter ("getX") and
// returns the attribute name X.
func GetterAttribute(op string, params []any) (string, bool) {
	if len(params) != 0 || !strings.HasPrefix(op, "get") || len(op) == len("get") {
		return "", false
	}
	attr := op[len("get"):]
	r, _ := utf8.DecodeRuneInString(attr)
	if !unicode.IsUpper(r) {
		return "", false
	}
	return attr, true
}
