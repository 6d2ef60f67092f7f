package plug

import (
	"context"
	"strings"
)

// Plugin is the minimal contract: a stable name used in reports and as the
// config section key.
type Plugin interface {
	Name() string
}

// Configurer receives the plugin's own config section.
// Absent keys must fall back to defaults rather than fail.
type Configurer interface {
	Plugin
	Configure(sec Section) error
}

// ArgExtender contributes flags to an extensible sub-command.
// It is called once per extensible sub-command; use ArgGroup.Command to
// target a specific one.
type ArgExtender interface {
	Plugin
	ExtendArgs(g *ArgGroup)
}

// ArgConsumer reads the parsed command line.
// Flags that were not supplied read as zero values.
type ArgConsumer interface {
	Plugin
	ConsumeArgs(args Args) error
}

// CloneActor acts on one cloned repository.
// Implementations must not mutate plugin state: they may run concurrently
// for different repositories.
type CloneActor interface {
	Plugin
	ActOnClonedRepo(ctx context.Context, path string) (Result, error)
}

// Capability is a bitset of the extension points a plugin implements.
type Capability uint8

const (
	CapConfigure Capability = 1 << iota
	CapExtendArgs
	CapConsumeArgs
	CapActOnClone

	CapNone Capability = 0
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapConfigure, "config"},
	{CapExtendArgs, "extend-args"},
	{CapConsumeArgs, "consume-args"},
	{CapActOnClone, "act-on-clone"},
}

// CapabilitiesOf detects which extension points p implements.
func CapabilitiesOf(p Plugin) Capability {
	var c Capability
	if _, ok := p.(Configurer); ok {
		c |= CapConfigure
	}
	if _, ok := p.(ArgExtender); ok {
		c |= CapExtendArgs
	}
	if _, ok := p.(ArgConsumer); ok {
		c |= CapConsumeArgs
	}
	if _, ok := p.(CloneActor); ok {
		c |= CapActOnClone
	}
	return c
}

// Has reports whether every bit of want is set in c.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// Names returns the capability names in declaration order.
func (c Capability) Names() []string {
	var names []string
	for _, cn := range capabilityNames {
		if c.Has(cn.cap) {
			names = append(names, cn.name)
		}
	}
	return names
}

// String joins the capability names with commas, or "none".
func (c Capability) String() string {
	if c == CapNone {
		return "none"
	}
	return strings.Join(c.Names(), ",")
}
