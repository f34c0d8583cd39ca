package mdb

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic means the input does not start with the mlocate signature
	// and is not a database of this format at all.
	ErrBadMagic = errors.New("not an mlocate database")

	// ErrUnsupportedVersion means the magic matched but the format version
	// byte is outside the known range.
	ErrUnsupportedVersion = errors.New("unsupported database version")

	// ErrTruncated means the input ended mid-record. Decode errors below the
	// header wrap this through *TruncatedError and come with partial results.
	ErrTruncated = errors.New("truncated database")

	// ErrInvalidPattern means a search pattern failed to compile.
	ErrInvalidPattern = errors.New("invalid search pattern")
)

// TruncatedError reports where a decode stopped and how many path records
// were produced before that point. It wraps ErrTruncated.
type TruncatedError struct {
	Offset  int // byte offset of the failed read
	Records int // path records decoded before the failure
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated database at byte %d (%d records decoded)", e.Offset, e.Records)
}

func (e *TruncatedError) Unwrap() error { return ErrTruncated }
