// Package export formats notes and the medical profile as plain text for
// the clipboard.
package export

import (
	"strings"

	"github.com/aretw0/biji/pkg/core"
	"github.com/aretw0/biji/pkg/medical"
)

const (
	MedicalHeader    = "MEDICAL PROFILE"
	MedicalSeparator = "==============="
)

// NoteText formats a note as "{title}\n\n{content}".
func NoteText(n core.Note) string {
	return n.Title + "\n\n" + n.Content
}

// MedicalText formats the profile as a labelled block, one line per field
// in the order of fields. Blank fields read medical.NotSet.
func MedicalText(data core.MedicalData, fields []medical.Field) string {
	var b strings.Builder
	b.WriteString(MedicalHeader)
	b.WriteByte('\n')
	b.WriteString(MedicalSeparator)
	b.WriteByte('\n')
	for _, f := range fields {
		b.WriteString(f.Label)
		b.WriteByte(' ')
		b.WriteString(medical.Display(data, f.Key))
		b.WriteByte('\n')
	}
	return b.String()
}
