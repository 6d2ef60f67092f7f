// Package ext turns plugin references from the config file or --plug into
// plugins.
//
// A reference is resolved in this order:
//
//   - ends in .lua: a Lua script (see package luascript)
//   - contains a path separator or starts with ~: a plugin executable
//     speaking the rpc contract (see package remote)
//   - otherwise: the name of a built-in plugin
package ext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/raphi011/rbee/internal/ext/filebatch"
	"github.com/raphi011/rbee/internal/ext/luascript"
	"github.com/raphi011/rbee/internal/ext/remote"
	"github.com/raphi011/rbee/internal/plug"
)

// Kind classifies a plugin reference.
type Kind string

const (
	KindBuiltin Kind = "builtin"
	KindScript  Kind = "lua"
	KindRemote  Kind = "remote"
)

// ErrUnknownPlugin is wrapped by LoadError for names that are neither a
// built-in nor a path.
var ErrUnknownPlugin = errors.New("unknown plugin")

// LoadError reports a plugin reference that could not be loaded.
type LoadError struct {
	Ref string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load plugin %q: %v", e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// builtins maps built-in plugin names to constructors.
var builtins = map[string]func() plug.Plugin{
	"javac":     func() plug.Plugin { return filebatch.Javac() },
	"pycompile": func() plug.Plugin { return filebatch.PyCompile() },
}

// BuiltinNames returns the names of the built-in plugins, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Classify reports how ref would be loaded.
func Classify(ref string) Kind {
	switch {
	case strings.EqualFold(filepath.Ext(ref), luascript.Ext):
		return KindScript
	case strings.ContainsRune(ref, '/') || strings.ContainsRune(ref, filepath.Separator) || strings.HasPrefix(ref, "~"):
		return KindRemote
	default:
		return KindBuiltin
	}
}

// KindOf reports the kind of an already loaded plugin.
func KindOf(p plug.Plugin) Kind {
	switch p.(type) {
	case *luascript.Plugin:
		return KindScript
	case *remote.Plugin:
		return KindRemote
	default:
		return KindBuiltin
	}
}

// Load resolves a single reference. Failures are *LoadError.
func Load(ctx context.Context, ref string) (plug.Plugin, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &LoadError{Ref: ref, Err: errors.New("empty reference")}
	}

	p, err := load(ctx, ref)
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: err}
	}
	return p, nil
}

func load(ctx context.Context, ref string) (plug.Plugin, error) {
	switch Classify(ref) {
	case KindScript:
		path, err := expandHome(ref)
		if err != nil {
			return nil, err
		}
		return luascript.Load(ctx, path)

	case KindRemote:
		path, err := expandHome(ref)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() || info.Mode().Perm()&0111 == 0 {
			return nil, fmt.Errorf("%s is not an executable file", path)
		}
		return remote.Open(ctx, path)

	default:
		newPlugin, ok := builtins[strings.ToLower(ref)]
		if !ok {
			return nil, fmt.Errorf("%w (built-in plugins: %s)", ErrUnknownPlugin, strings.Join(BuiltinNames(), ", "))
		}
		return newPlugin(), nil
	}
}

// LoadAll resolves refs in order and stops at the first failure.
func LoadAll(ctx context.Context, refs []string) ([]plug.Plugin, error) {
	plugins := make([]plug.Plugin, 0, len(refs))
	for _, ref := range refs {
		p, err := Load(ctx, ref)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand ~: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
