package mdb

// Kind tags a path record as a file or a directory.
type Kind uint8

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// PathRecord is one fully-qualified entry decoded from the directory tree.
// Records are created once during decoding and never mutated.
type PathRecord struct {
	Path string
	Kind Kind
}

// Basename returns the final path component of the record's path.
func (r PathRecord) Basename() string {
	for i := len(r.Path) - 1; i >= 0; i-- {
		if r.Path[i] == '/' {
			return r.Path[i+1:]
		}
	}
	return r.Path
}
