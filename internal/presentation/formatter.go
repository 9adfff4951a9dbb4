// Package presentation renders query results for the CLI and HTTP host.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format selects how results are rendered.
type Format string

const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatTable:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown format %q (want json or table)", s)
}

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format Format
	table  *tableRenderer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, format Format) *Formatter {
	return &Formatter{
		writer: writer,
		format: format,
		table:  newTableRenderer(writer),
	}
}

// FormatJSON writes v as indented JSON regardless of the configured format.
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatNames writes a names result.
func (f *Formatter) FormatNames(dto NamesDTO) error {
	if f.format == FormatJSON {
		return f.FormatJSON(dto)
	}
	rows := make([][]string, len(dto.Names))
	for i, n := range dto.Names {
		rows[i] = []string{n}
	}
	return f.table.render([]string{"NAME"}, rows, countFooter(dto.Count))
}

// FormatInstances writes an instances result.
func (f *Formatter) FormatInstances(dto InstancesDTO) error {
	if f.format == FormatJSON {
		return f.FormatJSON(dto)
	}
	rows := make([][]string, len(dto.Instances))
	for i, in := range dto.Instances {
		rows[i] = []string{in.Name, in.Domain, in.ClassName}
	}
	return f.table.render([]string{"NAME", "DOMAIN", "CLASS"}, rows, countFooter(dto.Count))
}

// FormatResource writes a described resource.
func (f *Formatter) FormatResource(dto ResourceDTO) error {
	if f.format == FormatJSON {
		return f.FormatJSON(dto)
	}

	if _, err := fmt.Fprintf(f.writer, "%s (%s)\n", dto.Name, dto.ClassName); err != nil {
		return err
	}
	if dto.Description != "" {
		if _, err := fmt.Fprintln(f.writer, dto.Description); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(f.writer); err != nil {
		return err
	}

	rows := make([][]string, len(dto.Attributes))
	for i, a := range dto.Attributes {
		rows[i] = []string{a.Name, a.Type, a.Access, valueString(a.Value)}
	}
	if err := f.table.render([]string{"ATTRIBUTE", "TYPE", "ACCESS", "VALUE"}, rows, ""); err != nil {
		return err
	}

	if len(dto.Operations) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(f.writer); err != nil {
		return err
	}
	rows = make([][]string, len(dto.Operations))
	for i, o := range dto.Operations {
		rows[i] = []string{o.Signature, o.Description}
	}
	return f.table.render([]string{"OPERATION", "DESCRIPTION"}, rows, "")
}

// FormatDomains writes the domain listing.
func (f *Formatter) FormatDomains(dto DomainsDTO) error {
	if f.format == FormatJSON {
		return f.FormatJSON(dto)
	}
	if len(dto.Targets) == 0 {
		rows := make([][]string, len(dto.Domains))
		for i, d := range dto.Domains {
			rows[i] = []string{d}
		}
		return f.table.render([]string{"DOMAIN"}, rows, "total: "+strconv.Itoa(dto.Count))
	}
	rows := make([][]string, len(dto.Targets))
	for i, t := range dto.Targets {
		rows[i] = []string{t.Domain, t.Kind, countString(t.Count)}
	}
	return f.table.render([]string{"DOMAIN", "KIND", "COUNT"}, rows, "total: "+strconv.Itoa(dto.Count))
}

func countFooter(n int) string {
	if n == 1 {
		return "1 result"
	}
	return strconv.Itoa(n) + " results"
}

func countString(n int) string {
	if n < 0 {
		return "?"
	}
	return strconv.Itoa(n)
}

func valueString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}
