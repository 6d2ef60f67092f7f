// Package rpc defines the wire contract between rbee and out-of-process
// plugins: a gRPC service carried over hashicorp/go-plugin, with JSON
// messages instead of protobuf.
//
// Plugin binaries implement ClonePluginServer and call Serve from main.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey  = "rbee"
	serviceName   = "rbee.plugin.v1.ClonePlugin"
	jsonCodecName = "json"

	methodGetMetadata     = "/" + serviceName + "/GetMetadata"
	methodActOnClonedRepo = "/" + serviceName + "/ActOnClonedRepo"
)

// HandshakeConfig must match between host and plugin binary.
var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "RBEE_PLUGIN",
	MagicCookieValue: "rbee",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

// Flag describes a command-line option the plugin wants on clone and check.
// The host registers it as --<plugin name>-<Name>.
type Flag struct {
	Name    string `json:"name"`
	Usage   string `json:"usage"`
	Default string `json:"default,omitempty"`
}

type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Flags   []Flag `json:"flags,omitempty"`
}

// ActRequest asks the plugin to inspect one repository. Settings holds the
// plugin's config section, overridden by flags given on the command line.
type ActRequest struct {
	Path     string            `json:"path"`
	Settings map[string]string `json:"settings,omitempty"`
}

// ActResponse carries the outcome. Status is "success", "warning" or "error".
type ActResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ClonePluginServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	ActOnClonedRepo(ctx context.Context, in *ActRequest) (*ActResponse, error)
}

type ClonePluginClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	ActOnClonedRepo(ctx context.Context, in *ActRequest) (*ActResponse, error)
}

type clonePluginClient struct {
	conn grpc.ClientConnInterface
}

func NewClonePluginClient(conn grpc.ClientConnInterface) ClonePluginClient {
	return &clonePluginClient{conn: conn}
}

func (c *clonePluginClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clonePluginClient) ActOnClonedRepo(ctx context.Context, in *ActRequest) (*ActResponse, error) {
	out := &ActResponse{}
	if err := c.conn.Invoke(ctx, methodActOnClonedRepo, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterClonePluginServer(server grpc.ServiceRegistrar, impl ClonePluginServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*ClonePluginServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler:    unaryHandler(methodGetMetadata, impl.GetMetadata),
			},
			{
				MethodName: "ActOnClonedRepo",
				Handler:    unaryHandler(methodActOnClonedRepo, impl.ActOnClonedRepo),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "rbee/plugin/v1",
	}, impl)
}

// unaryHandler adapts a typed method to grpc's untyped method handler.
func unaryHandler[Req, Resp any](method string, fn func(context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*Req)
			if !ok {
				return nil, fmt.Errorf("invalid request type %T", req)
			}
			return fn(ctx, typed)
		}
		return interceptor(ctx, in, info, handler)
	}
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl ClonePluginServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterClonePluginServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewClonePluginClient(conn), nil
}

// PluginMap returns the plugin set. The host passes nil.
func PluginMap(impl ClonePluginServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}

// Serve runs impl as a plugin process. It returns when the host disconnects.
func Serve(impl ClonePluginServer) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginMap(impl),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
