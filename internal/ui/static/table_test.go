package static

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/rbee/internal/plug"
)

func TestPluginRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info PluginInfo
		want []string
	}{
		{
			name: "builtin",
			info: PluginInfo{
				Order:        1,
				Name:         "javac",
				Kind:         "builtin",
				Capabilities: plug.CapConfigure | plug.CapActOnClone,
			},
			want: []string{"1", "javac", "builtin", "config,act-on-clone", "-"},
		},
		{
			name: "script without capabilities",
			info: PluginInfo{Order: 2, Name: "noop", Kind: "lua", Source: "/checks/noop.lua"},
			want: []string{"2", "noop", "lua", "none", "/checks/noop.lua"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			row := PluginRow(tt.info)
			if len(row) != len(PluginHeaders) {
				t.Fatalf("row has %d columns, want %d", len(row), len(PluginHeaders))
			}
			for i := range tt.want {
				if row[i] != tt.want[i] {
					t.Errorf("column %d (%s) = %q, want %q", i, PluginHeaders[i], row[i], tt.want[i])
				}
			}
		})
	}
}

func TestPluginTable(t *testing.T) {
	t.Parallel()

	out := ansi.Strip(PluginTable([]PluginInfo{
		{Order: 1, Name: "javac", Kind: "builtin", Capabilities: plug.CapConfigure},
		{Order: 2, Name: "readme", Kind: "remote", Source: "/usr/local/bin/rbee-readme"},
	}))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[0]), "#") || !strings.Contains(lines[0], "CAPABILITIES") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "javac") || !strings.Contains(lines[2], "readme") {
		t.Errorf("rows out of order:\n%s", out)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	t.Parallel()

	if got := RenderTable([]string{"A"}, nil); got != "" {
		t.Errorf("RenderTable with no rows = %q, want empty", got)
	}
}
