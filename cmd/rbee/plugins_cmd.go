package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/rbee/internal/ext"
	"github.com/raphi011/rbee/internal/ext/luascript"
	"github.com/raphi011/rbee/internal/ext/remote"
	"github.com/raphi011/rbee/internal/hooks"
	"github.com/raphi011/rbee/internal/output"
	"github.com/raphi011/rbee/internal/ui/static"
)

func newPluginsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plugins",
		Short:   "List the active plugins",
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `List the active plugins in registration order with their capabilities.

Plugins run in this order on every repository.`,
		Example: `  rbee plugins
  rbee -p javac -p ./checks/readme.lua plugins`,
		Annotations: map[string]string{needsPlugins: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			reg := e.session.Registry()
			if len(reg.Plugins()) == 0 {
				out.Println("No plugins active.")
				return nil
			}
			out.Print(static.PluginTable(pluginInfos(reg)))
			return nil
		},
	}

	return cmd
}

// pluginInfos describes the registered plugins with the capabilities
// detected at registration.
func pluginInfos(reg *hooks.Registry) []static.PluginInfo {
	plugins := reg.Plugins()
	infos := make([]static.PluginInfo, len(plugins))
	for i, p := range plugins {
		info := static.PluginInfo{
			Order:        i + 1,
			Name:         p.Name(),
			Kind:         string(ext.KindOf(p)),
			Capabilities: reg.Capabilities(p.Name()),
		}
		switch p := p.(type) {
		case *luascript.Plugin:
			info.Source = p.Path()
		case *remote.Plugin:
			info.Source = p.Binary()
		}
		infos[i] = info
	}
	return infos
}
