package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold      = color.New(color.Bold).SprintFunc()
	Dim       = color.New(color.Faint).SprintFunc()
	Green     = color.New(color.FgGreen).SprintFunc()
	Red       = color.New(color.FgRed).SprintFunc()
	BoldCyan  = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
)

// Route renders a flight plan as "A → B → C" with the endpoints highlighted.
func Route(names []string) string {
	if len(names) == 0 {
		return Dim("(no route)")
	}
	parts := make([]string, len(names))
	for i, n := range names {
		if i == 0 || i == len(names)-1 {
			parts[i] = BoldCyan(n)
		} else {
			parts[i] = n
		}
	}
	return strings.Join(parts, Dim(" → "))
}

// Savings colors a signed savings value red when it is a loss.
func Savings(value string) string {
	if strings.HasPrefix(value, "-") {
		return Red(value)
	}
	return Green(value)
}

// Field prints one aligned "label: value" line.
func Field(w io.Writer, label string, value interface{}) {
	fmt.Fprintf(w, "  %s %v\n", Dim(fmt.Sprintf("%-12s", label+":")), value)
}

func Header(w io.Writer, title string) {
	fmt.Fprintln(w, Bold(title))
}

func Error(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", Red("✗"), err)
}
