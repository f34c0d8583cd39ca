package mdb

import "errors"

// Entry tags in a directory's entry list.
const (
	tagFile = 0x00
	tagDir  = 0x01
	tagEnd  = 0x02
)

type walkState uint8

const (
	stateRecord  walkState = iota // expect a directory record header
	stateEntries                  // reading the current directory's entry list
	stateDone
)

// Walker decodes the directory tree one path record at a time, depth-first
// in pre-order. It is forward-only; re-decoding means constructing a new
// Walker over the same image. Nesting depth is input-controlled, so the walk
// keeps its own stack of enclosing directory paths instead of recursing.
type Walker struct {
	c       *Cursor
	header  Header
	parents []string // enclosing directory paths, innermost last
	dir     string   // directory whose entry list is being read
	state   walkState
	count   int
	err     *TruncatedError
}

// NewWalker validates the header of data and returns a walker positioned at
// the first directory record. Header failures (bad magic, unsupported
// version, truncation inside the header) are fatal and return no walker.
func NewWalker(data []byte) (*Walker, error) {
	c := NewCursor(data)
	h, err := decodeHeader(c)
	if err != nil {
		return nil, err
	}

	w := &Walker{c: c, header: h}
	if c.Remaining() == 0 {
		w.state = stateDone // empty tree
	}
	return w, nil
}

// Header returns the decoded database header.
func (w *Walker) Header() Header { return w.header }

// Records returns the number of path records produced so far.
func (w *Walker) Records() int { return w.count }

// Err returns the truncation that stopped the walk, or nil if the image was
// decoded to the end.
func (w *Walker) Err() error {
	if w.err != nil {
		return w.err
	}
	return nil
}

// Next returns the next path record in pre-order. It returns false when the
// walk is exhausted or stopped by a truncation; Err distinguishes the two.
func (w *Walker) Next() (PathRecord, bool) {
	for {
		switch w.state {
		case stateDone:
			return PathRecord{}, false

		case stateRecord:
			path, err := w.readRecordHeader()
			if err != nil {
				w.fail(err)
				return PathRecord{}, false
			}
			w.dir = path
			w.state = stateEntries
			if len(w.parents) == 0 {
				// Top-level record: no parent entry announced it.
				return w.emit(path, KindDirectory), true
			}
			// A child record was already emitted from its parent's entry
			// list; its own path is only the prefix for its entries.

		case stateEntries:
			tag, err := w.c.U8()
			if err != nil {
				w.fail(err)
				return PathRecord{}, false
			}
			switch tag {
			case tagEnd:
				if n := len(w.parents); n > 0 {
					w.dir = w.parents[n-1]
					w.parents = w.parents[:n-1]
					continue
				}
				if w.c.Remaining() == 0 {
					w.state = stateDone
					return PathRecord{}, false
				}
				w.state = stateRecord
			case tagFile:
				name, err := w.c.CString()
				if err != nil {
					w.fail(err)
					return PathRecord{}, false
				}
				return w.emit(joinPath(w.dir, name), KindFile), true
			case tagDir:
				name, err := w.c.CString()
				if err != nil {
					w.fail(err)
					return PathRecord{}, false
				}
				// The child's own record follows immediately.
				w.parents = append(w.parents, w.dir)
				w.state = stateRecord
				return w.emit(joinPath(w.dir, name), KindDirectory), true
			default:
				// Not a tag this format can produce; the stream is not
				// decodable past this point.
				w.fail(&TruncatedError{Offset: w.c.Offset() - 1})
				return PathRecord{}, false
			}
		}
	}
}

// readRecordHeader reads a directory record's fixed part: the encoded path,
// the modification time pair, and the padding word.
func (w *Walker) readRecordHeader() (string, error) {
	path, err := w.c.CString()
	if err != nil {
		return "", err
	}
	if _, err := w.c.I64(); err != nil { // mtime seconds
		return "", err
	}
	if _, err := w.c.U32(); err != nil { // mtime nanoseconds
		return "", err
	}
	if err := w.c.Skip(4); err != nil { // padding
		return "", err
	}
	return path, nil
}

func (w *Walker) emit(path string, kind Kind) PathRecord {
	w.count++
	return PathRecord{Path: path, Kind: kind}
}

func (w *Walker) fail(err error) {
	var te *TruncatedError
	if !errors.As(err, &te) {
		te = &TruncatedError{Offset: w.c.Offset()}
	}
	te.Records = w.count
	w.err = te
	w.state = stateDone
}

// joinPath concatenates a directory's encoded path with an entry name.
func joinPath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}

// Database is one decoded database image: the header plus the path index.
// All state is scoped to the value; decoding the same image again yields an
// identical database.
type Database struct {
	Header Header
	Index  *PathIndex

	// Truncated is non-nil when the decode stopped early. The index then
	// holds the records produced before the failure.
	Truncated *TruncatedError
}

// Decode parses a complete database image and materializes its path index.
//
// Header failures are fatal and return a nil database. A truncation below
// the header returns both the partial database and the *TruncatedError, so
// callers can report a partial decode instead of discarding usable records.
func Decode(data []byte) (*Database, error) {
	w, err := NewWalker(data)
	if err != nil {
		return nil, err
	}

	idx := &PathIndex{}
	for {
		rec, ok := w.Next()
		if !ok {
			break
		}
		idx.records = append(idx.records, rec)
	}

	db := &Database{Header: w.Header(), Index: idx}
	if w.err != nil {
		db.Truncated = w.err
		return db, w.err
	}
	return db, nil
}
