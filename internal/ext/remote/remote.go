// Package remote runs plugins as separate executables speaking the rpc
// contract. Each call starts the binary, talks to it over gRPC and kills it
// again, so a crashing plugin cannot take rbee down.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/raphi011/rbee/internal/ext/remote/rpc"
	"github.com/raphi011/rbee/internal/log"
	"github.com/raphi011/rbee/internal/plug"
)

const (
	defaultStartTimeout = 5 * time.Second
	defaultCallTimeout  = 2 * time.Minute
)

// ErrEmptyName is returned by Open when the binary reports no name.
var ErrEmptyName = errors.New("plugin reported an empty name")

// Plugin is the host-side proxy for a plugin binary.
type Plugin struct {
	binary string
	meta   rpc.Metadata

	settings    map[string]string
	callTimeout time.Duration
}

// Open starts binary once to read its metadata.
func Open(ctx context.Context, binary string) (*Plugin, error) {
	client, closeFn, err := connect(binary)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultStartTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get metadata from %s: %w", binary, err)
	}
	if meta.Name == "" {
		return nil, fmt.Errorf("%s: %w", binary, ErrEmptyName)
	}

	return &Plugin{
		binary:      binary,
		meta:        *meta,
		settings:    map[string]string{},
		callTimeout: defaultCallTimeout,
	}, nil
}

func (p *Plugin) Name() string { return p.meta.Name }

// Binary returns the executable path.
func (p *Plugin) Binary() string { return p.binary }

// Version returns the version the binary reported, possibly empty.
func (p *Plugin) Version() string { return p.meta.Version }

// Settings returns a copy of the settings sent with each request.
func (p *Plugin) Settings() map[string]string { return maps.Clone(p.settings) }

// Configure forwards the section to the plugin with every request.
// The key timeout bounds each call instead.
func (p *Plugin) Configure(sec plug.Section) error {
	timeout, err := sec.Duration("timeout", defaultCallTimeout)
	if err != nil {
		return err
	}
	if timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", timeout)
	}
	p.callTimeout = timeout

	p.settings = sec.Strings()
	delete(p.settings, "timeout")
	for _, f := range p.meta.Flags {
		if _, ok := p.settings[f.Name]; !ok && f.Default != "" {
			p.settings[f.Name] = f.Default
		}
	}
	return nil
}

func (p *Plugin) flagName(f rpc.Flag) string { return p.meta.Name + "-" + f.Name }

// ExtendArgs registers the flags the binary declared.
func (p *Plugin) ExtendArgs(g *plug.ArgGroup) {
	for _, f := range p.meta.Flags {
		g.Flags().String(p.flagName(f), f.Default, f.Usage)
	}
}

// ConsumeArgs copies flags given on the command line into the settings.
func (p *Plugin) ConsumeArgs(args plug.Args) error {
	for _, f := range p.meta.Flags {
		if args.Changed(p.flagName(f)) {
			p.settings[f.Name] = args.String(p.flagName(f))
		}
	}
	return nil
}

// ActOnClonedRepo starts the binary and asks it to inspect path.
func (p *Plugin) ActOnClonedRepo(ctx context.Context, path string) (plug.Result, error) {
	done := log.FromContext(ctx).Command(path, p.binary, "ActOnClonedRepo")
	start := time.Now()
	defer func() { done(time.Since(start)) }()

	client, closeFn, err := connect(p.binary)
	if err != nil {
		return plug.Result{}, err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, p.callTimeout)
	defer cancel()

	resp, err := client.ActOnClonedRepo(callCtx, &rpc.ActRequest{Path: path, Settings: p.Settings()})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return plug.Failed(p.meta.Name, fmt.Sprintf("plugin timed out after %s", p.callTimeout)), nil
		}
		return plug.Result{}, fmt.Errorf("act on %s: %w", path, err)
	}

	status, err := plug.ParseStatus(resp.Status)
	if err != nil {
		return plug.Result{}, err
	}
	return plug.NewResult(p.meta.Name, status, resp.Message), nil
}

func connect(binary string) (rpc.ClonePluginClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  rpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          rpc.PluginMap(nil),
		Cmd:              exec.Command(binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start plugin %s: %w", binary, err)
	}
	raw, err := rpcClient.Dispense(rpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense plugin %s: %w", binary, err)
	}
	typed, ok := raw.(rpc.ClonePluginClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("plugin %s: rpc client type mismatch", binary)
	}
	return typed, closeFn, nil
}

// callContext bounds a call by timeout unless the parent already has a deadline.
func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
