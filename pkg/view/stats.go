package view

import (
	"encoding/json"
	"fmt"
	"math"
)

// Stats summarizes the note collection.
type Stats struct {
	Total     int     `json:"total"`
	Filtered  int     `json:"filtered"`
	StorageKB float64 `json:"storageKB"`
}

// String renders the stats the way the footer shows them.
func (s Stats) String() string {
	if s.Filtered != s.Total {
		return fmt.Sprintf("%d of %d notes | %.1f KB", s.Filtered, s.Total, s.StorageKB)
	}
	return fmt.Sprintf("%d notes | %.1f KB", s.Total, s.StorageKB)
}

// Stats returns the note counts and an approximate storage size, the length
// of the JSON serialization of all notes in KiB rounded to one decimal.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Total:     len(c.all),
		Filtered:  len(c.filtered),
		StorageKB: storageKB(c.all),
	}
}

func storageKB(v any) float64 {
	b, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return math.Round(float64(len(b))/1024*10) / 10
}
