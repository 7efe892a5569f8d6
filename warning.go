package pdfreader

import (
	"fmt"
	"strings"
)

// Warning describes a page that could not be processed. Terminal
// operations skip such pages unless the Extractor is Strict.
type Warning struct {
	Page    int
	Message string
	Err     error
}

func (w Warning) String() string {
	return fmt.Sprintf("page %d: %s", w.Page, w.Message)
}

// FormatWarnings renders warnings one per line
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
