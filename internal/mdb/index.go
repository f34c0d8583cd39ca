package mdb

// PathIndex is the ordered collection of path records from one decode,
// preserved in pre-order. It is built exactly once and read-only afterward,
// so it is safe for concurrent readers.
type PathIndex struct {
	records []PathRecord
}

// Len returns the total number of records.
func (x *PathIndex) Len() int { return len(x.records) }

// At returns the record at position i in decode order.
func (x *PathIndex) At(i int) PathRecord { return x.records[i] }

// All returns every record in decode order. The returned slice is the
// index's backing storage and must not be modified.
func (x *PathIndex) All() []PathRecord { return x.records }

// ByKind returns the records of the given kind, in decode order.
func (x *PathIndex) ByKind(kind Kind) []PathRecord {
	var out []PathRecord
	for _, r := range x.records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// CountByKind returns the number of records of the given kind.
func (x *PathIndex) CountByKind(kind Kind) int {
	n := 0
	for _, r := range x.records {
		if r.Kind == kind {
			n++
		}
	}
	return n
}
