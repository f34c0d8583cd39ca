package mdb

// Stats summarizes one decoded database: header metadata plus counts from a
// single pass over the path index.
type Stats struct {
	Root              string
	Command           string
	Version           byte
	RequireVisibility bool

	Total       int
	Directories int
	Files       int

	// Partial is set when the decode was cut short; TruncatedAt is the byte
	// offset where it stopped. Counts then cover the decoded prefix only.
	Partial     bool
	TruncatedAt int
}

// Stats collects the summary for the database. Pure and read-only; any
// failure was already surfaced by Decode.
func (db *Database) Stats() Stats {
	s := Stats{
		Root:              db.Header.Root,
		Command:           db.Header.Command,
		Version:           db.Header.Version,
		RequireVisibility: db.Header.RequireVisibility,
		Total:             db.Index.Len(),
	}
	for _, r := range db.Index.All() {
		if r.Kind == KindDirectory {
			s.Directories++
		} else {
			s.Files++
		}
	}
	if db.Truncated != nil {
		s.Partial = true
		s.TruncatedAt = db.Truncated.Offset
	}
	return s
}
