package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oakwood-commons/crmx/internal/record"
	"github.com/oakwood-commons/crmx/pkg/loader"
)

type fileSource struct {
	schema record.Schema
	path   string
}

func newFile(schema record.Schema, path string) (*fileSource, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("file source: missing path")
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return &fileSource{schema: schema, path: path}, nil
}

func (s *fileSource) Load(ctx context.Context) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := loader.LoadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	rows, err := record.FromValues(s.schema, loader.Unwrap(root))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	return rows, nil
}

func (s *fileSource) String() string { return "file:" + s.path }
