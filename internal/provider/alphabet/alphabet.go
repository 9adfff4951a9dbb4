// Package alphabet is a demonstration virtual provider exposing the letters
// A to Z as read-only resources.
package alphabet

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/metrics"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/notify"
	"github.com/zjrosen/mxview/internal/provider"
)

const (
	DefaultDomain = "alphabet"
	ClassName     = "VirtualAlphabetObject"
	PropertyKey   = "letter"
)

// Provider serves one resource per letter while running.
type Provider struct {
	*provider.Base[rune]
	letters *provider.Collection[rune]

	mu sync.Mutex // serializes Start and Stop
}

var _ model.Provider = (*Provider)(nil)

// New returns a stopped provider bound to domain. m may be nil.
func New(domain string, m *metrics.Metrics) *Provider {
	letters := provider.NewCollection[rune]()
	return &Provider{
		Base:    provider.NewBase[rune](domain, kind{}, letters.Snapshot, m),
		letters: letters,
	}
}

// Start populates the alphabet and announces every letter.
func (p *Provider) Start(_ context.Context, sink notify.Sink) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	letters := make([]rune, 0, 26)
	for r := 'A'; r <= 'Z'; r++ {
		letters = append(letters, r)
	}
	p.letters.Replace(letters)
	p.Activate(sink)
	return nil
}

// Stop announces the removal of every letter and empties the alphabet.
func (p *Provider) Stop(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Deactivate()
	p.letters.Clear()
	return nil
}

func (p *Provider) Item(name objname.Name) (model.Item, error) {
	return p.Lookup(name, p.find)
}

func (p *Provider) find(name objname.Name) (rune, bool) {
	v, ok := name.Property(PropertyKey)
	if !ok || name.Len() != 1 || len(v) != 1 {
		return 0, false
	}
	want := rune(v[0])
	for _, r := range p.letters.Snapshot() {
		if r == want {
			return r, true
		}
	}
	return 0, false
}

type kind struct{}

func (kind) ClassName(rune) string { return ClassName }

func (kind) Describe(r rune) model.Descriptor {
	return model.Descriptor{
		ClassName:   "letter",
		Description: fmt.Sprintf("The letter %c", r),
		Attributes: []model.AttributeInfo{
			{Name: "Vowel", Type: "bool", Description: "Whether the letter is a vowel", Readable: true, IsGetter: true},
			{Name: "Position", Type: "int", Description: "1-based position in the alphabet", Readable: true},
			{Name: "Lower", Type: "string", Description: "Lower case form", Readable: true},
		},
		Operations: []model.OperationInfo{
			{Name: "toLower", ReturnType: "string", Description: "Returns the lower case form"},
		},
	}
}

func (kind) NameProperties(r rune) (map[string]string, error) {
	if r < 'A' || r > 'Z' {
		return nil, fmt.Errorf("%w: %q is not a capital letter", objname.ErrMalformedName, r)
	}
	return map[string]string{PropertyKey: string(r)}, nil
}

func (kind) Attribute(r rune, attr string) (any, error) {
	switch attr {
	case "Vowel":
		return IsVowel(r), nil
	case "Position":
		return int(r-'A') + 1, nil
	case "Lower":
		return string(unicode.ToLower(r)), nil
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrAttributeNotFound, attr)
	}
}

func (kind) Invoke(_ context.Context, r rune, op string, _ []any) (any, error) {
	switch op {
	case "toLower":
		return string(unicode.ToLower(r)), nil
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrOperationNotSupported, op)
	}
}

// IsVowel reports whether r is one of A, E, I, O, U in either case.
func IsVowel(r rune) bool {
	return strings.ContainsRune("AEIOU", unicode.ToUpper(r))
}
