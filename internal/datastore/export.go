package datastore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/lepinkainen/coverfetch/internal/store"
)

// TableName returns the export table of a family, e.g. "artworks_media".
func TableName(family string) string {
	return family + "_media"
}

// Schema returns the CREATE statement of a family's export table.
func Schema(family string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		cache_key TEXT PRIMARY KEY,
		day INTEGER,
		title TEXT,
		creator TEXT,
		media_url TEXT,
		source TEXT,
		exported_at TEXT
	)`, TableName(family))
}

type exportRow struct {
	CacheKey   string
	Day        int
	Title      string
	Creator    string
	MediaURL   *string
	Source     *string
	ExportedAt time.Time
}

// Rows converts the records of s into export rows, sorted by key.
func Rows(s *store.Store, exportedAt time.Time) []map[string]any {
	keys := s.Keys()
	rows := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		r, _ := s.Get(key)
		rows = append(rows, ToRow(exportRow{
			CacheKey:   key,
			Day:        r.Day,
			Title:      r.Title,
			Creator:    r.Creator,
			MediaURL:   r.MediaURL,
			Source:     r.Source,
			ExportedAt: exportedAt,
		}, RowOptions{}))
	}
	return rows
}

// Export writes every record of s to target.
func Export(ctx context.Context, target Store, s *store.Store) error {
	family := s.Layout().Family

	if err := target.Connect(); err != nil {
		return fmt.Errorf("connecting to datastore: %w", err)
	}
	defer func() { _ = target.Close() }()

	if err := target.CreateTable(Schema(family)); err != nil {
		return err
	}

	rows := Rows(s, time.Now())
	if err := target.BatchInsert(ctx, DatabaseName, TableName(family), rows); err != nil {
		return fmt.Errorf("exporting %s: %w", family, err)
	}

	slog.Info("Exported records to Datasette", "table", TableName(family), "count", len(rows))
	return nil
}

// FromConfig builds the export target selected by datasette.mode. It returns
// nil when datasette.enabled is false.
func FromConfig() (Store, error) {
	if !viper.GetBool("datasette.enabled") {
		return nil, nil
	}

	switch mode := viper.GetString("datasette.mode"); mode {
	case "local":
		return NewSQLiteStore(viper.GetString("datasette.dbfile")), nil
	case "remote":
		return NewDatasetteClient(
			viper.GetString("datasette.remote_url"),
			viper.GetString("datasette.api_token"),
		), nil
	default:
		return nil, fmt.Errorf("invalid Datasette mode: %s", mode)
	}
}
