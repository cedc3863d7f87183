package core

import (
	"fmt"
	"io"
	"strings"
)

// FormatReport renders samples as one line of "id: activity" pairs with four
// decimals, each followed by a tab, terminated by a newline.
func FormatReport(samples []Sample) string {
	var b strings.Builder
	for _, s := range samples {
		fmt.Fprintf(&b, "%d: %.4f\t", s.ID, s.Activity)
	}
	b.WriteByte('\n')
	return b.String()
}

// WriteReport writes FormatReport(samples) to w.
func WriteReport(w io.Writer, samples []Sample) error {
	_, err := io.WriteString(w, FormatReport(samples))
	return err
}
