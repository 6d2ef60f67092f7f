package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/raphi011/rbee/internal/ext/remote/rpc"
)

const version = "1.0.0"

// readmeNames are tried in order.
var readmeNames = []string{"README.md", "README", "README.txt", "readme.md"}

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *rpc.Empty) (*rpc.Metadata, error) {
	return &rpc.Metadata{
		Name:    "readme",
		Version: version,
		Flags: []rpc.Flag{
			{Name: "min-words", Usage: "minimum number of words in the README", Default: "1"},
		},
	}, nil
}

func (s *server) ActOnClonedRepo(_ context.Context, in *rpc.ActRequest) (*rpc.ActResponse, error) {
	minWords := 1
	if raw := in.Settings["min-words"]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid min-words %q", raw)
		}
		minWords = n
	}

	for _, name := range readmeNames {
		data, err := os.ReadFile(filepath.Join(in.Path, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}

		words := len(strings.Fields(string(data)))
		if words < minWords {
			return &rpc.ActResponse{
				Status:  "warning",
				Message: fmt.Sprintf("%s has %d words, expected at least %d", name, words, minWords),
			}, nil
		}
		return &rpc.ActResponse{Status: "success", Message: name + " present"}, nil
	}

	return &rpc.ActResponse{Status: "error", Message: "no README found"}, nil
}
