package objname

import "unicode/utf8"

// Matches reports whether name satisfies pattern. A nil pattern matches every
// name.
//
// A non-empty domain on name must glob-match the pattern's domain. Properties
// are then compared in one of two modes: a property-pattern requires every
// listed key to be present in name with an equal value, while an exact pattern
// requires the canonical property strings to be identical.
func Matches(name Name, pattern *Name) bool {
	if pattern == nil {
		return true
	}

	if name.domain != "" && !Wildmatch(name.domain, pattern.domain) {
		return false
	}

	if !pattern.propPattern {
		return name.canonical == pattern.canonical
	}

	for k, want := range pattern.props {
		got, ok := name.props[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Wildmatch reports whether s matches the glob p, where '?' consumes exactly
// one character and '*' consumes zero or more characters. Characters are
// UTF-8 runes.
//
// '*' is resolved by backtracking over every consumption length, so patterns
// with many alternating stars can take exponential time. Domains are short.
func Wildmatch(s, p string) bool {
	for p != "" {
		switch p[0] {
		case '?':
			if s == "" {
				return false
			}
			_, n := utf8.DecodeRuneInString(s)
			s, p = s[n:], p[1:]
		case '*':
			p = p[1:]
			if p == "" {
				return true
			}
			for {
				if Wildmatch(s, p) {
					return true
				}
				if s == "" {
					return false
				}
				_, n := utf8.DecodeRuneInString(s)
				s = s[n:]
			}
		default:
			_, pn := utf8.DecodeRuneInString(p)
			_, sn := utf8.DecodeRuneInString(s)
			if s == "" || s[:sn] != p[:pn] {
				return false
			}
			s, p = s[sn:], p[pn:]
		}
	}
	return s == ""
}
