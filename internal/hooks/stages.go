package hooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/raphi011/rbee/internal/log"
	"github.com/raphi011/rbee/internal/plug"
)

// ErrAlreadyConfigured is returned when the configuration stage runs twice
// against the same registry.
var ErrAlreadyConfigured = errors.New("configuration stage already ran")

// Configure runs the configuration stage: every Configurer receives the
// section named after it, upper-cased. Sections may be empty.
//
// The registry is sealed first. A failing Configurer yields an ERROR result
// (reported with the run's setup results) and keeps its defaults.
func Configure(ctx context.Context, reg *Registry, settings plug.Settings) ([]plug.Result, error) {
	if !reg.markConfigured() {
		return nil, ErrAlreadyConfigured
	}

	if settings == nil {
		settings = plug.MapSettings{}
	}

	l := log.FromContext(ctx)
	var results []plug.Result
	for _, p := range reg.CapableOf(plug.CapConfigure) {
		c := p.(plug.Configurer)
		section := settings.Section(plug.SectionName(p.Name()))
		l.Debug("configure plugin", "plugin", p.Name(), "section", section.Name(), "keys", len(section.Keys()))

		if err := guard(func() error { return c.Configure(section) }); err != nil {
			results = append(results, plug.Failed(p.Name(), fmt.Sprintf("configuration failed: %v", err)))
		}
	}
	return results, nil
}

// ContributeArgs lets every ArgExtender add flags to g.
// Call once per extensible sub-command. Name collisions are not detected
// here: pflag panics on a redefined flag and that panic propagates.
func ContributeArgs(reg *Registry, g *plug.ArgGroup) {
	for _, p := range reg.CapableOf(plug.CapExtendArgs) {
		p.(plug.ArgExtender).ExtendArgs(g)
	}
}

// ConsumeArgs hands the parsed command line to every ArgConsumer.
// Failures become ERROR results; the remaining consumers still run.
func ConsumeArgs(ctx context.Context, reg *Registry, args plug.Args) []plug.Result {
	l := log.FromContext(ctx)
	var results []plug.Result
	for _, p := range reg.CapableOf(plug.CapConsumeArgs) {
		c := p.(plug.ArgConsumer)
		l.Debug("consume args", "plugin", p.Name(), "command", args.Command())

		if err := guard(func() error { return c.ConsumeArgs(args) }); err != nil {
			results = append(results, plug.Failed(p.Name(), fmt.Sprintf("invalid arguments: %v", err)))
		}
	}
	return results
}

// guard runs fn, converting a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
