package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// field is one member of a JSON object written in a fixed order.
type field struct {
	name  string
	value any
}

func writeObject(buf *bytes.Buffer, fields []field) error {
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.name)
		if err != nil {
			return err
		}
		buf.Write(name)
		buf.WriteByte(':')

		switch v := f.value.(type) {
		case []field:
			if err := writeObject(buf, v); err != nil {
				return err
			}
		default:
			value, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("marshaling %s: %w", f.name, err)
			}
			buf.Write(value)
		}
	}
	buf.WriteByte('}')
	return nil
}

// MarshalJSON writes lastUpdated, stats and the records using the field
// names of the store's layout.
func (s *Store) MarshalJSON() ([]byte, error) {
	l := s.layout

	sources := s.Stats.Sources
	if sources == nil {
		sources = map[string]int{}
	}
	stats := []field{
		{"total", s.Stats.Total},
		{l.WithField, s.Stats.WithMedia},
		{l.WithoutField, s.Stats.WithoutMedia},
		{"percentage", s.Stats.Percentage},
		{"newlyFetched", s.Stats.NewlyFetched},
		{"alreadyCached", s.Stats.AlreadyCached},
		{"failed", s.Stats.Failed},
		{"sources", sources},
	}

	keys := s.Keys()
	records := make([]field, 0, len(keys))
	for _, key := range keys {
		r := s.records[key]
		records = append(records, field{key, []field{
			{"day", r.Day},
			{"title", r.Title},
			{l.CreatorField, r.Creator},
			{l.URLField, r.MediaURL},
			{"source", r.Source},
		}})
	}

	var lastUpdated any
	if !s.LastUpdated.IsZero() {
		lastUpdated = s.LastUpdated.UTC().Format(timestampLayout)
	}

	var buf bytes.Buffer
	err := writeObject(&buf, []field{
		{"lastUpdated", lastUpdated},
		{"stats", stats},
		{l.RecordsField, records},
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type rawRecord map[string]json.RawMessage

// UnmarshalJSON reads a cache file written with the store's layout.
// Unknown top-level members are ignored.
func (s *Store) UnmarshalJSON(data []byte) error {
	l := s.layout

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}

	if raw, ok := top["lastUpdated"]; ok {
		var ts string
		if err := json.Unmarshal(raw, &ts); err == nil && ts != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				s.LastUpdated = parsed
			}
		}
	}

	if raw, ok := top["stats"]; ok {
		var stats map[string]json.RawMessage
		if err := json.Unmarshal(raw, &stats); err == nil {
			s.Stats = Stats{
				Total:         intMember(stats, "total"),
				WithMedia:     intMember(stats, l.WithField),
				WithoutMedia:  intMember(stats, l.WithoutField),
				Percentage:    intMember(stats, "percentage"),
				NewlyFetched:  intMember(stats, "newlyFetched"),
				AlreadyCached: intMember(stats, "alreadyCached"),
				Failed:        intMember(stats, "failed"),
			}
			_ = json.Unmarshal(stats["sources"], &s.Stats.Sources)
		}
	}

	records := make(map[string]Record)
	if raw, ok := top[l.RecordsField]; ok && !bytes.Equal(raw, []byte("null")) {
		var rawRecords map[string]rawRecord
		if err := json.Unmarshal(raw, &rawRecords); err != nil {
			return fmt.Errorf("decoding %s: %w", l.RecordsField, err)
		}
		for key, rr := range rawRecords {
			records[key] = Record{
				Day:      intMember(rr, "day"),
				Title:    stringMember(rr, "title"),
				Creator:  stringMember(rr, l.CreatorField),
				MediaURL: StringPtr(stringMember(rr, l.URLField)),
				Source:   StringPtr(stringMember(rr, "source")),
			}
		}
	}
	s.records = records

	return nil
}

func intMember(m map[string]json.RawMessage, name string) int {
	var v int
	_ = json.Unmarshal(m[name], &v)
	return v
}

func stringMember(m map[string]json.RawMessage, name string) string {
	var v string
	_ = json.Unmarshal(m[name], &v)
	return v
}
