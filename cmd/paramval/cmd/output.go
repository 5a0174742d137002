package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/msto63/paramval/pkg/core/config"
	"github.com/spf13/cobra"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94A3B8")) // Slate 400

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")). // Emerald
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8B5CF6")). // Violet
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")). // Red
			Bold(true)
)

// Output formats
const (
	formatText = "text"
	formatJSON = "json"
)

// printer writes command results as styled text or JSON
type printer struct {
	w         io.Writer
	format    string
	precision int
	color     bool
}

func newPrinter(cmd *cobra.Command, cfg *config.Config, format string) *printer {
	if format == "" {
		format = cfg.Output.Format
	}
	return &printer{
		w:         cmd.OutOrStdout(),
		format:    format,
		precision: cfg.Output.Precision,
		color:     cfg.Output.Color,
	}
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) header(text string) {
	fmt.Fprintln(p.w, p.style(headerStyle, text))
}

func (p *printer) field(label, value string) {
	fmt.Fprintf(p.w, "%s %s\n", p.style(labelStyle, fmt.Sprintf("%-12s", label+":")), p.style(valueStyle, value))
}

// record prints a flat record; keys print in the given order in text mode
func (p *printer) record(keys []string, values map[string]interface{}) error {
	if p.format == formatJSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	}
	for _, k := range keys {
		if v, ok := values[k]; ok {
			p.field(k, fmt.Sprint(v))
		}
	}
	return nil
}

// counts prints a name -> count map sorted by name
func (p *printer) counts(title string, m map[string]int) {
	if len(m) == 0 {
		return
	}
	p.header(title)
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		p.field("  "+k, fmt.Sprint(m[k]))
	}
}
