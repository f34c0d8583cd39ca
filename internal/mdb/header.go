package mdb

import (
	"bytes"
	"fmt"
)

// magic is the 8-byte signature at offset 0 of every mlocate database.
var magic = []byte("\x00mlocate")

// Known on-disk format revisions. Version 1 added the per-database
// require-visibility flag; version 0 predates it.
const (
	VersionLegacy  = 0
	VersionCurrent = 1
)

// Header is the decoded configuration block of a database. Immutable once
// decoded.
type Header struct {
	Version           byte
	RequireVisibility bool   // only meaningful at Version >= 1
	Root              string // root path the index was built from
	Command           string // command line that produced the database
}

// decodeHeader validates the magic and version and reads the configuration
// block. On success the cursor is left at the first directory record.
// Any truncation inside the header is fatal to the whole decode.
func decodeHeader(c *Cursor) (Header, error) {
	var h Header

	got, err := c.Bytes(len(magic))
	if err != nil {
		return h, err
	}
	if !bytes.Equal(got, magic) {
		return h, fmt.Errorf("%w: signature % x", ErrBadMagic, got)
	}

	h.Version, err = c.U8()
	if err != nil {
		return h, err
	}

	switch h.Version {
	case VersionLegacy:
		// No flags in the legacy layout.
	case VersionCurrent:
		// Visibility flag plus two alignment bytes.
		vis, err := c.U8()
		if err != nil {
			return h, err
		}
		h.RequireVisibility = vis != 0
		if err := c.Skip(2); err != nil {
			return h, err
		}
	default:
		return h, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	if h.Root, err = c.CString(); err != nil {
		return h, err
	}
	if h.Command, err = c.CString(); err != nil {
		return h, err
	}

	return h, nil
}
