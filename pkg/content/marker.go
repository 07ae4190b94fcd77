package content

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// MarkerFileName is the sidecar record co-located with every installed
// item in the shared store.
const MarkerFileName = ".modmeta.json"

// markerTimeFormat is the wire format for marker timestamps.
const markerTimeFormat = "2006-01-02T15:04:05Z"

// Marker records what is installed and when it was last synced and
// checked. Timestamp is the content epoch (remote time_updated at the
// moment of the last successful sync); LastChecked changes on every
// staleness probe even when nothing is downloaded.
type Marker struct {
	SteamID     string `json:"steamid"`
	Name        string `json:"name"`
	Timestamp   int64  `json:"timestamp"`
	SyncedAt    string `json:"synced_at"`
	LastChecked string `json:"last_checked"`
}

// ReadMarker loads a marker. Missing or corrupt files yield ok=false,
// never an error: an unreadable marker simply means "not installed as
// far as we know".
func ReadMarker(path string) (*Marker, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var m Marker
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	return &m, true
}

// WriteMarker persists a marker via a temp file and rename so a crash
// cannot leave a half-written record.
func WriteMarker(path string, m *Marker) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func formatMarkerTime(t time.Time) string {
	return t.UTC().Format(markerTimeFormat)
}
