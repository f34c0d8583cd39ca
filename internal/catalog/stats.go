package catalog

import (
	"fmt"
	"os"
)

// Stats summarizes the catalog contents and its most recent scan.
type Stats struct {
	Total       int64
	Directories int64
	Files       int64
	TotalSize   int64 // sum of file sizes in bytes

	StorePath string
	StoreSize int64 // on-disk size of the database file; 0 for memory stores

	LastScan *Scan // nil when the catalog has never been updated
}

// Stats runs the aggregate queries over the catalog.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	st.StorePath = s.path

	row := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(is_dir), 0),
		       COALESCE(SUM(CASE WHEN is_dir = 0 THEN size ELSE 0 END), 0)
		FROM files`)
	if err := row.Scan(&st.Total, &st.Directories, &st.TotalSize); err != nil {
		return Stats{}, fmt.Errorf("aggregating catalog: %w", err)
	}
	st.Files = st.Total - st.Directories

	if s.path != ":memory:" {
		if info, err := os.Stat(s.path); err == nil {
			st.StoreSize = info.Size()
		}
	}

	last, err := s.LastScan()
	if err != nil {
		return Stats{}, err
	}
	st.LastScan = last

	return st, nil
}
