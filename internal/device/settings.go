package device

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

// Setting is one firmware configuration row as the UI consumes it. The
// wire carries only id and value; unit, category, and description come
// from the static catalog below.
type Setting struct {
	ID          int    `json:"id"`
	Value       string `json:"value"`
	Unit        string `json:"unit"`
	Category    string `json:"category"`
	ReadOnly    bool   `json:"read_only"`
	Description string `json:"description"`
}

// settingMeta is the catalog entry for a known GRBL setting id.
type settingMeta struct {
	unit, category, description string
	readOnly                    bool
}

var settingCatalog = map[int]settingMeta{
	0:   {"us", "General", "Step pulse time", false},
	1:   {"ms", "General", "Step idle delay", false},
	10:  {"", "Reporting", "Status report options", false},
	11:  {"mm", "Motion", "Junction deviation", false},
	12:  {"mm", "Motion", "Arc tolerance", false},
	13:  {"", "Reporting", "Report in inches", false},
	20:  {"", "Limits", "Soft limits enable", false},
	21:  {"", "Limits", "Hard limits enable", false},
	22:  {"", "Homing", "Homing cycle enable", false},
	23:  {"", "Homing", "Homing direction invert", false},
	24:  {"mm/min", "Homing", "Homing locate feed rate", false},
	25:  {"mm/min", "Homing", "Homing search seek rate", false},
	30:  {"rpm", "Spindle", "Maximum spindle speed", false},
	31:  {"rpm", "Spindle", "Minimum spindle speed", false},
	32:  {"", "Spindle", "Laser mode enable", false},
	100: {"step/mm", "Axes", "X-axis steps per millimeter", false},
	101: {"step/mm", "Axes", "Y-axis steps per millimeter", false},
	102: {"step/mm", "Axes", "Z-axis steps per millimeter", false},
	110: {"mm/min", "Axes", "X-axis maximum rate", false},
	111: {"mm/min", "Axes", "Y-axis maximum rate", false},
	112: {"mm/min", "Axes", "Z-axis maximum rate", false},
	120: {"mm/sec^2", "Axes", "X-axis acceleration", false},
	121: {"mm/sec^2", "Axes", "Y-axis acceleration", false},
	122: {"mm/sec^2", "Axes", "Z-axis acceleration", false},
	130: {"mm", "Axes", "X-axis maximum travel", false},
	131: {"mm", "Axes", "Y-axis maximum travel", false},
	132: {"mm", "Axes", "Z-axis maximum travel", false},
}

// Settings is the device configuration snapshot plus a pending overlay of
// edits not yet sent to the controller. Safe for concurrent use: the
// reader task accumulates rows while the UI reads and edits.
type Settings struct {
	mu      sync.Mutex
	rows    map[int]Setting
	pending map[int]string
}

// NewSettings returns an empty snapshot.
func NewSettings() *Settings {
	return &Settings{
		rows:    make(map[int]Setting),
		pending: make(map[int]string),
	}
}

// Accumulate records one `$N=V` row from a retrieval in progress.
func (s *Settings) Accumulate(row SettingRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta := settingCatalog[row.ID]
	s.rows[row.ID] = Setting{
		ID:          row.ID,
		Value:       row.Value,
		Unit:        meta.unit,
		Category:    meta.category,
		ReadOnly:    meta.readOnly,
		Description: meta.description,
	}
}

// Get returns the setting for id, pending edit applied, if known.
func (s *Settings) Get(id int) (Setting, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return Setting{}, false
	}
	if v, edited := s.pending[id]; edited {
		row.Value = v
	}
	return row, true
}

// All returns every known setting sorted by id, pending edits applied.
func (s *Settings) All() []Setting {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Setting, 0, len(s.rows))
	for _, row := range s.rows {
		if v, edited := s.pending[row.ID]; edited {
			row.Value = v
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports how many rows the snapshot holds.
func (s *Settings) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// SetPending stages an edit without touching the stored snapshot.
func (s *Settings) SetPending(id int, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[id] = value
}

// Pending returns the staged edits by id.
func (s *Settings) Pending() map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]string, len(s.pending))
	for k, v := range s.pending {
		out[k] = v
	}
	return out
}

// ClearPending drops a staged edit (or all of them with id < 0), used
// after the edits were written to the controller or abandoned.
func (s *Settings) ClearPending(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 {
		s.pending = make(map[int]string)
		return
	}
	delete(s.pending, id)
}

// SaveSnapshot writes the settings to a JSON file, for backup before a
// firmware update or for copying a machine profile.
func (s *Settings) SaveSnapshot(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return core.Wrap(core.KindResource, "device.Settings.SaveSnapshot", err)
	}
	data, err := json.MarshalIndent(s.All(), "", "  ")
	if err != nil {
		return core.Wrap(core.KindResource, "device.Settings.SaveSnapshot", err)
	}
	return core.Wrap(core.KindResource, "device.Settings.SaveSnapshot", os.WriteFile(path, data, 0644))
}

// LoadSnapshot reads a previously saved snapshot. A missing file yields an
// empty snapshot, not an error.
func LoadSnapshot(path string) (*Settings, error) {
	s := NewSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, core.Wrap(core.KindResource, "device.LoadSnapshot", err)
	}
	var rows []Setting
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, core.Wrap(core.KindResource, "device.LoadSnapshot", err)
	}
	for _, row := range rows {
		s.rows[row.ID] = row
	}
	return s, nil
}
