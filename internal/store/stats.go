package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string     `json:"db_path"`
	DBSizeBytes   int64      `json:"db_size_bytes"`
	TotalVersions int        `json:"total_versions"`
	Keys          []KeyStats `json:"keys"`
}

// KeyStats holds per-slot counts.
type KeyStats struct {
	Key           string `json:"key"`
	Versions      int    `json:"versions"`
	LatestVersion int    `json:"latest_version"`
	LatestBytes   int    `json:"latest_bytes"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM brain_versions`).Scan(&st.TotalVersions); err != nil {
		return st, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.key, counts.cnt, v.version, v.size_bytes
		FROM brain_versions v
		INNER JOIN (
			SELECT key, COUNT(*) AS cnt, MAX(version) AS max_ver
			FROM brain_versions GROUP BY key
		) counts ON v.key = counts.key AND v.version = counts.max_ver
		ORDER BY v.key`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ks KeyStats
		if err := rows.Scan(&ks.Key, &ks.Versions, &ks.LatestVersion, &ks.LatestBytes); err != nil {
			return st, err
		}
		st.Keys = append(st.Keys, ks)
	}

	return st, rows.Err()
}
