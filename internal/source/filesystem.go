package source

import (
	"context"
	"fmt"
	"os"
)

// FilesystemSource reads database images from the local filesystem.
type FilesystemSource struct{}

// Fetch reads the file at ref in full. The format has no random-access
// index, so decoding always wants the whole image.
func (s *FilesystemSource) Fetch(_ context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("reading database file: %w", err)
	}
	return data, nil
}
