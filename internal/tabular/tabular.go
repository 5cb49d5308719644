// Package tabular implements the delimited text format shared by the
// registry file and the remote event feed.
//
// The format is comma/newline delimited with two escape mechanisms:
// backslash escapes (`\n` becomes a newline, anything else is taken
// verbatim) and double-quoted fields in which commas and newlines lose
// their delimiter meaning.
package tabular

import "strings"

// Document is an ordered sequence of rows of string fields.
type Document [][]string

type parseState int

const (
	stateField parseState = iota
	stateEscape
	stateQuoted
)

// Parse decodes text into a Document.
//
// A trailing field or row is only emitted when non-empty, so a final
// newline does not produce a spurious empty row.
func Parse(text string) Document {
	var (
		state = stateField
		prev  = stateField // state to return to after an escape
		doc   Document
		row   []string
		field strings.Builder
	)

	for _, c := range text {
		switch state {
		case stateField:
			switch c {
			case ',':
				row = append(row, field.String())
				field.Reset()
			case '\n':
				row = append(row, field.String())
				field.Reset()
				doc = append(doc, row)
				row = nil
			case '\\':
				prev = stateField
				state = stateEscape
			case '"':
				state = stateQuoted
			default:
				field.WriteRune(c)
			}
		case stateEscape:
			if c == 'n' {
				field.WriteByte('\n')
			} else {
				field.WriteRune(c)
			}
			state = prev
		case stateQuoted:
			switch c {
			case '\\':
				prev = stateQuoted
				state = stateEscape
			case '"':
				state = stateField
			default:
				field.WriteRune(c)
			}
		}
	}

	if field.Len() > 0 {
		row = append(row, field.String())
	}
	if len(row) > 0 {
		doc = append(doc, row)
	}
	return doc
}

// Format encodes a Document. Rows are joined with newlines, fields with
// commas; no trailing newline is emitted.
//
// A field is wrapped in quotes only when it contains a comma. Fields
// containing a raw quote or newline but no comma are emitted unquoted,
// which is not lossless under Parse; the registry and feed never carry
// such fields, and the rule is kept as-is for compatibility with
// existing files.
func Format(doc Document) string {
	var b strings.Builder
	for i, row := range doc {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, field := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(formatField(field))
		}
	}
	return b.String()
}

func formatField(field string) string {
	escaped := strings.ReplaceAll(field, `"`, `\"`)
	if strings.Contains(escaped, ",") {
		return `"` + escaped + `"`
	}
	return escaped
}
