// Package luascript loads repository checks written in Lua.
//
// A script defines a global function
//
//	function act_on_cloned_repo(path, settings)
//	  return rbee.SUCCESS, "looks good"
//	end
//
// and may set the globals name (defaults to the file's base name) and flags,
// a table mapping option names to help texts. Every flag becomes
// --<name>-<option> on clone and check; a flag given on the command line
// overrides the option of the same name in the plugin's config section.
//
// Scripts run in a sandbox without io, os, package or load functions. File
// access goes through the rbee module, which is confined to the repository.
package luascript

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/raphi011/rbee/internal/log"
	"github.com/raphi011/rbee/internal/plug"
)

// Ext is the file extension of script plugins.
const Ext = ".lua"

// EntryPoint is the function every script must define.
const EntryPoint = "act_on_cloned_repo"

// ErrNoEntryPoint is returned by Load when the script lacks EntryPoint.
var ErrNoEntryPoint = errors.New("script does not define " + EntryPoint)

// Plugin is a compiled script. The bytecode is shared; every call gets its
// own interpreter, so one Plugin may act on several repositories at once.
type Plugin struct {
	path  string
	name  string
	proto *lua.FunctionProto
	flags map[string]string // option -> help

	settings map[string]string
	timeout  time.Duration
}

// LoadTimeout bounds the script's top level when it is loaded.
const LoadTimeout = 5 * time.Second

// Load compiles the script at path, runs its top level to read the metadata
// and reports an error if that takes longer than LoadTimeout.
func Load(ctx context.Context, path string) (*Plugin, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	chunk, err := parse.Parse(f, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}

	p := &Plugin{
		path:     path,
		name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		proto:    proto,
		flags:    map[string]string{},
		settings: map[string]string{},
	}

	ctx, cancel := context.WithTimeout(ctx, LoadTimeout)
	defer cancel()

	L, err := p.newState(ctx, filepath.Dir(path))
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, fmt.Errorf("load %s: top level did not finish: %w", path, cerr)
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer L.Close()

	if fn := L.GetGlobal(EntryPoint); fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%s: %w", path, ErrNoEntryPoint)
	}
	if name, ok := L.GetGlobal("name").(lua.LString); ok && strings.TrimSpace(string(name)) != "" {
		p.name = strings.TrimSpace(string(name))
	}
	if tbl, ok := L.GetGlobal("flags").(*lua.LTable); ok {
		tbl.ForEach(func(k, v lua.LValue) {
			p.flags[k.String()] = lua.LVAsString(v)
		})
	}
	return p, nil
}

func (p *Plugin) Name() string { return p.name }

// Path returns the script file.
func (p *Plugin) Path() string { return p.path }

// Settings returns a copy of the settings passed to the script.
func (p *Plugin) Settings() map[string]string { return maps.Clone(p.settings) }

// Configure keeps the section as flat strings. The key timeout additionally
// bounds each run of the script.
func (p *Plugin) Configure(sec plug.Section) error {
	timeout, err := sec.Duration("timeout", 0)
	if err != nil {
		return err
	}
	if timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", timeout)
	}
	p.timeout = timeout
	p.settings = sec.Strings()
	return nil
}

func (p *Plugin) flagName(option string) string { return p.name + "-" + option }

// ExtendArgs registers the script's flags.
func (p *Plugin) ExtendArgs(g *plug.ArgGroup) {
	for _, option := range slices.Sorted(maps.Keys(p.flags)) {
		g.Flags().String(p.flagName(option), "", p.flags[option])
	}
}

// ConsumeArgs copies flags given on the command line into the settings.
func (p *Plugin) ConsumeArgs(args plug.Args) error {
	for option := range p.flags {
		if args.Changed(p.flagName(option)) {
			p.settings[option] = args.String(p.flagName(option))
		}
	}
	return nil
}

// ActOnClonedRepo calls the script's entry point with the repository path
// and a table of settings.
func (p *Plugin) ActOnClonedRepo(ctx context.Context, path string) (plug.Result, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	log.FromContext(ctx).Debug("lua script", "plugin", p.name, "path", path)

	L, err := p.newState(ctx, path)
	if err != nil {
		return plug.Result{}, p.runError(ctx, err)
	}
	defer L.Close()

	settings := L.NewTable()
	for k, v := range p.settings {
		settings.RawSetString(k, lua.LString(v))
	}

	err = callProtected(func() error {
		return L.CallByParam(lua.P{
			Fn:      L.GetGlobal(EntryPoint),
			NRet:    2,
			Protect: true,
		}, lua.LString(path), settings)
	})
	if err != nil {
		if ctx.Err() != nil && p.timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return plug.Failed(p.name, fmt.Sprintf("script timed out after %s", p.timeout)), nil
		}
		return plug.Result{}, p.runError(ctx, err)
	}

	ret, msg := L.Get(-2), L.Get(-1)
	L.Pop(2)

	if ret == lua.LNil {
		return plug.Result{}, fmt.Errorf("%s returned no status", EntryPoint)
	}
	status, err := plug.ParseStatus(lua.LVAsString(ret))
	if err != nil {
		return plug.Result{}, fmt.Errorf("%s: %w", EntryPoint, err)
	}
	return plug.NewResult(p.name, status, lua.LVAsString(msg)), nil
}

func (p *Plugin) runError(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return fmt.Errorf("script error: %w", err)
}

// callProtected turns interpreter panics into errors.
func callProtected(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
