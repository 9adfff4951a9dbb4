package objname

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformedName is returned when a domain or property set cannot be encoded
// as a valid Name.
var ErrMalformedName = errors.New("malformed name")

const (
	domainSep   = ":"
	propSep     = ","
	kvSep       = "="
	wildcardAll = "*"
)

// reservedChars may not appear in property keys or values.
const reservedChars = `:,=*?"`

// Name is an immutable structured identifier: a domain plus key/value properties.
// The zero value is a valid, empty, non-pattern name.
type Name struct {
	domain      string
	props       map[string]string
	canonical   string
	propPattern bool
}

// New builds an exact (non property-pattern) name.
func New(domain string, props map[string]string) (Name, error) {
	return build(domain, props, false)
}

// NewPattern builds a property-pattern that matches any name carrying at least
// the given properties.
func NewPattern(domain string, props map[string]string) (Name, error) {
	return build(domain, props, true)
}

// MustNew is like New but panics on error. Intended for constants and tests.
func MustNew(domain string, props map[string]string) Name {
	n, err := New(domain, props)
	if err != nil {
		panic(err)
	}
	return n
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Name {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

func build(domain string, props map[string]string, propPattern bool) (Name, error) {
	if strings.Contains(domain, domainSep) {
		return Name{}, fmt.Errorf("%w: domain %q contains %q", ErrMalformedName, domain, domainSep)
	}

	copied := make(map[string]string, len(props))
	for k, v := range props {
		if err := validateProperty(k, v); err != nil {
			return Name{}, err
		}
		copied[k] = v
	}

	return Name{
		domain:      domain,
		props:       copied,
		canonical:   canonicalize(copied),
		propPattern: propPattern,
	}, nil
}

func validateProperty(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty property key", ErrMalformedName)
	}
	if value == "" {
		return fmt.Errorf("%w: empty value for key %q", ErrMalformedName, key)
	}
	if strings.ContainsAny(key, reservedChars) {
		return fmt.Errorf("%w: key %q contains a reserved character", ErrMalformedName, key)
	}
	if strings.ContainsAny(value, reservedChars) {
		return fmt.Errorf("%w: value %q for key %q contains a reserved character", ErrMalformedName, value, key)
	}
	return nil
}

func canonicalize(props map[string]string) string {
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(propSep)
		}
		b.WriteString(k)
		b.WriteString(kvSep)
		b.WriteString(props[k])
	}
	return b.String()
}

// Parse reads the string form "domain:k1=v1,k2=v2". A trailing "*" element
// ("domain:k=v,*" or "domain:*") marks a property-pattern.
func Parse(s string) (Name, error) {
	domain, rest, ok := strings.Cut(s, domainSep)
	if !ok {
		return Name{}, fmt.Errorf("%w: %q has no domain separator", ErrMalformedName, s)
	}

	props := make(map[string]string)
	propPattern := false
	if rest == "" {
		return build(domain, props, false)
	}

	parts := strings.Split(rest, propSep)
	for i, part := range parts {
		if part == wildcardAll {
			if i != len(parts)-1 || propPattern {
				return Name{}, fmt.Errorf("%w: %q has a misplaced wildcard", ErrMalformedName, s)
			}
			propPattern = true
			continue
		}
		k, v, found := strings.Cut(part, kvSep)
		if !found {
			return Name{}, fmt.Errorf("%w: property %q has no %q", ErrMalformedName, part, kvSep)
		}
		if _, dup := props[k]; dup {
			return Name{}, fmt.Errorf("%w: duplicate key %q", ErrMalformedName, k)
		}
		props[k] = v
	}

	return build(domain, props, propPattern)
}

// Domain returns the name's domain.
func (n Name) Domain() string { return n.domain }

// Property returns the value for key.
func (n Name) Property(key string) (string, bool) {
	v, ok := n.props[key]
	return v, ok
}

// Properties returns a copy of the property map.
func (n Name) Properties() map[string]string {
	out := make(map[string]string, len(n.props))
	for k, v := range n.props {
		out[k] = v
	}
	return out
}

// Len returns the number of properties.
func (n Name) Len() int { return len(n.props) }

// Canonical returns the sorted "k=v" pairs joined by commas.
func (n Name) Canonical() string { return n.canonical }

// IsZero reports whether n is the zero Name.
func (n Name) IsZero() bool {
	return n.domain == "" && len(n.props) == 0 && !n.propPattern
}

// IsDomainPattern reports whether the domain contains a wildcard.
func (n Name) IsDomainPattern() bool {
	return strings.ContainsAny(n.domain, "*?")
}

// IsPropertyPattern reports whether n matches supersets of its properties.
func (n Name) IsPropertyPattern() bool { return n.propPattern }

// IsPattern reports whether n can match more than one name.
func (n Name) IsPattern() bool {
	return n.IsDomainPattern() || n.propPattern
}

// String returns the canonical string form, which Parse accepts.
func (n Name) String() string {
	s := n.domain + domainSep + n.canonical
	if n.propPattern {
		if n.canonical == "" {
			return s + wildcardAll
		}
		return s + propSep + wildcardAll
	}
	return s
}

// Key returns the identity string used for set membership.
func (n Name) Key() string { return n.String() }

// Equal reports value equality.
func (n Name) Equal(other Name) bool {
	return n.domain == other.domain &&
		n.canonical == other.canonical &&
		n.propPattern == other.propPattern
}

// MarshalJSON encodes the name as its string form.
func (n Name) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// UnmarshalJSON decodes a name from its string form.
func (n *Name) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
