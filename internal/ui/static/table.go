// Package static renders non-interactive terminal tables.
package static

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/rbee/internal/plug"
	"github.com/raphi011/rbee/internal/ui/styles"
)

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.PrimaryStyle.PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// PluginInfo describes one registered plugin for "rbee plugins".
type PluginInfo struct {
	Order        int // 1-based registration position
	Name         string
	Kind         string // builtin, lua or remote
	Capabilities plug.Capability
	Source       string // script path or binary, empty for built-ins
}

// PluginHeaders are the column headers of PluginTable.
var PluginHeaders = []string{"#", "NAME", "KIND", "CAPABILITIES", "SOURCE"}

// PluginRow formats one plugin as a table row matching PluginHeaders.
func PluginRow(p PluginInfo) []string {
	source := p.Source
	if source == "" {
		source = "-"
	}
	return []string{
		strconv.Itoa(p.Order),
		p.Name,
		p.Kind,
		p.Capabilities.String(),
		source,
	}
}

// PluginTable renders plugins in the order given.
func PluginTable(plugins []PluginInfo) string {
	rows := make([][]string, len(plugins))
	for i, p := range plugins {
		rows[i] = PluginRow(p)
	}
	return RenderTable(PluginHeaders, rows)
}
