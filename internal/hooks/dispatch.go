package hooks

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raphi011/rbee/internal/log"
	"github.com/raphi011/rbee/internal/plug"
)

type tracebackKey struct{}

// WithTraceback makes panicking plugins log their stack trace at debug
// level. The ERROR result carries only the panic value either way.
func WithTraceback(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, tracebackKey{}, enabled)
}

func tracebackEnabled(ctx context.Context) bool {
	enabled, _ := ctx.Value(tracebackKey{}).(bool)
	return enabled
}

// Dispatch runs every CloneActor on the repository at path, in registration
// order, and returns exactly one Result per CloneActor.
func Dispatch(ctx context.Context, reg *Registry, path string) []plug.Result {
	actors := reg.CapableOf(plug.CapActOnClone)
	results := make([]plug.Result, 0, len(actors))
	for _, p := range actors {
		results = append(results, invoke(ctx, p.(plug.CloneActor), path))
	}
	return results
}

// Progress is called after each repository finishes dispatching.
// With more than one worker it is called from the worker goroutines.
type Progress func(done, total int, path string)

// DispatchOption configures DispatchAll.
type DispatchOption func(*dispatchOptions)

type dispatchOptions struct {
	progress Progress
}

// WithProgress reports completed repositories to fn.
func WithProgress(fn Progress) DispatchOption {
	return func(o *dispatchOptions) { o.progress = fn }
}

// DispatchAll runs Dispatch for every path with at most workers repositories
// in flight. results[i] belongs to paths[i] regardless of completion order.
// With workers <= 1 the paths are processed sequentially.
//
// A failing plugin never cancels other repositories; only ctx does.
func DispatchAll(ctx context.Context, reg *Registry, paths []string, workers int, opts ...DispatchOption) [][]plug.Result {
	var o dispatchOptions
	for _, opt := range opts {
		opt(&o)
	}

	results := make([][]plug.Result, len(paths))
	var done atomic.Int32
	finish := func(path string) {
		n := int(done.Add(1))
		if o.progress != nil {
			o.progress(n, len(paths), path)
		}
	}

	if workers <= 1 {
		for i, path := range paths {
			results[i] = Dispatch(ctx, reg, path)
			finish(path)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			results[i] = Dispatch(ctx, reg, path)
			finish(path)
			return nil // Never fail: plugin faults are results
		})
	}

	_ = g.Wait()
	return results
}

// invoke calls one CloneActor, converting every fault into an ERROR result
// that names the plugin.
func invoke(ctx context.Context, a plug.CloneActor, path string) (res plug.Result) {
	name := a.Name()
	l := log.FromContext(ctx)
	l.Debug("act on cloned repo", "plugin", name, "path", path)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			if tracebackEnabled(ctx) {
				l.Debug("plugin panic", "plugin", name, "stack", "\n"+strings.TrimSpace(string(debug.Stack())))
			}
			res = plug.Failed(name, fmt.Sprintf("plugin panicked: %v", r))
		}
		l.Debug("plugin finished", "plugin", name, "path", path, "status", res.Status(), "took", time.Since(start).Round(time.Millisecond))
	}()

	if err := ctx.Err(); err != nil {
		return plug.Failed(name, fmt.Sprintf("not run: %v", err))
	}

	r, err := a.ActOnClonedRepo(ctx, path)
	if err != nil {
		return plug.Failed(name, err.Error())
	}
	if r.IsZero() || !r.Status().Valid() {
		return plug.Failed(name, "plugin returned no result")
	}
	// Source is always the producing plugin.
	return plug.NewResult(name, r.Status(), r.Message())
}
