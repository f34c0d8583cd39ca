// Package source retrieves database images for decoding. Forensic database
// files often live on remote systems, so a reference is either a local file
// path or an s3://bucket/key URI.
package source

import (
	"context"
	"strings"

	"mloc-go/internal/config"
)

// Source fetches the raw bytes of a database image.
type Source interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// ForRef returns the source capable of resolving ref.
func ForRef(ctx context.Context, cfg config.SourceConfig, ref string) (Source, error) {
	if isS3Ref(ref) {
		return NewS3Source(ctx, cfg)
	}
	return &FilesystemSource{}, nil
}

// Fetch resolves ref with the appropriate source and returns the image
// bytes.
func Fetch(ctx context.Context, cfg config.SourceConfig, ref string) ([]byte, error) {
	src, err := ForRef(ctx, cfg, ref)
	if err != nil {
		return nil, err
	}
	return src.Fetch(ctx, ref)
}

const s3Scheme = "s3://"

func isS3Ref(ref string) bool {
	return strings.HasPrefix(ref, s3Scheme)
}

// parseS3Ref splits s3://bucket/key into its parts.
func parseS3Ref(ref string) (bucket, key string, ok bool) {
	if !isS3Ref(ref) {
		return "", "", false
	}
	rest := ref[len(s3Scheme):]
	i := strings.IndexByte(rest, '/')
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
