package feed

import "strings"

// Render builds the announcement text for one delivery cycle.
// Events keep feed order; an event whose date failed to normalize shows
// its raw date text instead.
func Render(events []Event) string {
	var b strings.Builder
	b.WriteString("Events this week:")
	for _, e := range events {
		b.WriteString("\n\n")
		b.WriteString(e.Name)
		b.WriteString("\n")
		if e.Start.IsZero() {
			b.WriteString(e.RawDate)
		} else {
			b.WriteString(e.Start.Format("Monday 2 January"))
		}
		b.WriteString(" - ")
		b.WriteString(e.Location)
		if e.Notes != "" {
			b.WriteString("\n")
			b.WriteString(e.Notes)
		}
	}
	return b.String()
}
