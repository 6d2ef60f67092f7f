package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"gopkg.in/yaml.v3"

	"github.com/raphi011/rbee/internal/plug"
	"github.com/raphi011/rbee/internal/ui/styles"
)

// Format selects the report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return Format(s), nil
	}
	return "", fmt.Errorf("invalid format %q: must be \"text\", \"json\", or \"yaml\"", s)
}

// Options control rendering.
type Options struct {
	Format Format
	// Width wraps continuation lines of multi-line messages; 0 disables wrapping.
	Width int
}

// messageIndent prefixes continuation lines of multi-line messages.
const messageIndent = "    "

// Render writes the report to w.
func Render(w io.Writer, r *RunReport, opts Options) error {
	switch opts.Format {
	case "", FormatText:
		_, err := io.WriteString(w, Text(r, opts.Width))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(document(r))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(document(r)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", opts.Format)
	}
}

// Text renders the human-readable report. Styling is always emitted; the
// output writer strips it where unsupported.
func Text(r *RunReport, width int) string {
	var b strings.Builder

	if len(r.Setup) > 0 {
		writeGroup(&b, "setup", worstOf(r.Setup), r.Setup, width)
	}
	for _, u := range r.Units {
		writeGroup(&b, u.Path, u.Status(), u.Results, width)
	}

	writeSummary(&b, r)
	return b.String()
}

func writeGroup(b *strings.Builder, title string, status plug.Status, results []plug.Result, width int) {
	fmt.Fprintf(b, "%s %s\n", styles.FormatStatusSymbol(status), styles.PrimaryStyle.Render(title))
	if len(results) == 0 {
		fmt.Fprintf(b, "  %s\n", styles.MutedStyle.Render("no plugins acted on this repository"))
	}
	for _, res := range results {
		writeResult(b, res, width)
	}
	b.WriteString("\n")
}

// writeResult writes "<plugin>: <STATUS> — <message>" with continuation
// lines of the message indented below it.
func writeResult(b *strings.Builder, res plug.Result, width int) {
	first, rest, _ := strings.Cut(strings.TrimRight(res.Message(), "\n"), "\n")
	fmt.Fprintf(b, "  %s: %s — %s\n", styles.Bold.Render(res.Source()), styles.FormatStatus(res.Status()), first)

	if rest == "" {
		return
	}
	if width > len(messageIndent) {
		rest = ansi.Wrap(rest, width-len(messageIndent), "")
	}
	for line := range strings.SplitSeq(rest, "\n") {
		b.WriteString(messageIndent)
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func writeSummary(b *strings.Builder, r *RunReport) {
	c := r.Counts()
	overall := r.Overall()
	summary := fmt.Sprintf("%d %s, %d results: %d succeeded, %d warnings, %d errors",
		len(r.Units), plural(len(r.Units), "repository", "repositories"),
		c.Total(), c.Success, c.Warning, c.Error)
	fmt.Fprintf(b, "%s %s %s\n", styles.FormatStatusSymbol(overall), styles.FormatStatus(overall), styles.MutedStyle.Render(summary))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// reportDoc is the machine-readable report layout shared by JSON and YAML.
type reportDoc struct {
	ID      string        `json:"id" yaml:"id"`
	Command string        `json:"command" yaml:"command"`
	Started time.Time     `json:"started" yaml:"started"`
	Status  plug.Status   `json:"status" yaml:"status"`
	Counts  Counts        `json:"counts" yaml:"counts"`
	Setup   []plug.Result `json:"setup" yaml:"setup"`
	Units   []unitDoc     `json:"units" yaml:"units"`
}

type unitDoc struct {
	Path    string        `json:"path" yaml:"path"`
	Status  plug.Status   `json:"status" yaml:"status"`
	Results []plug.Result `json:"results" yaml:"results"`
}

func document(r *RunReport) reportDoc {
	doc := reportDoc{
		ID:      r.ID,
		Command: r.Command,
		Started: r.Started,
		Status:  r.Overall(),
		Counts:  r.Counts(),
		Setup:   nonNil(r.Setup),
		Units:   make([]unitDoc, 0, len(r.Units)),
	}
	for _, u := range r.Units {
		doc.Units = append(doc.Units, unitDoc{Path: u.Path, Status: u.Status(), Results: nonNil(u.Results)})
	}
	return doc
}

func nonNil(results []plug.Result) []plug.Result {
	if results == nil {
		return []plug.Result{}
	}
	return results
}
