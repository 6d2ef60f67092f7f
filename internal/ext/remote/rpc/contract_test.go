package rpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type echoServer struct{}

func (echoServer) GetMetadata(context.Context, *Empty) (*Metadata, error) {
	return &Metadata{Name: "echo", Version: "1.0.0", Flags: []Flag{{Name: "mode", Usage: "echo mode"}}}, nil
}

func (echoServer) ActOnClonedRepo(_ context.Context, in *ActRequest) (*ActResponse, error) {
	if in.Path == "" {
		return nil, errors.New("path required")
	}
	return &ActResponse{Status: "success", Message: in.Path + " " + in.Settings["mode"]}, nil
}

// dial serves impl in-process and returns a client for it.
func dial(t *testing.T, impl ClonePluginServer) ClonePluginClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	RegisterClonePluginServer(server, impl)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewClonePluginClient(conn)
}

func TestContract(t *testing.T) {
	t.Parallel()

	client := dial(t, echoServer{})
	ctx := context.Background()

	meta, err := client.GetMetadata(ctx)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if meta.Name != "echo" || len(meta.Flags) != 1 || meta.Flags[0].Name != "mode" {
		t.Errorf("metadata = %+v", meta)
	}

	resp, err := client.ActOnClonedRepo(ctx, &ActRequest{Path: "/tmp/repo", Settings: map[string]string{"mode": "loud"}})
	if err != nil {
		t.Fatalf("ActOnClonedRepo: %v", err)
	}
	if resp.Status != "success" || resp.Message != "/tmp/repo loud" {
		t.Errorf("response = %+v", resp)
	}
}

func TestContract_ServerError(t *testing.T) {
	t.Parallel()

	client := dial(t, echoServer{})

	_, err := client.ActOnClonedRepo(context.Background(), &ActRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if s, ok := status.FromError(err); !ok || s.Code() != codes.Unknown || s.Message() != "path required" {
		t.Errorf("error = %v", err)
	}
}
