package server

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
)

//go:generate go run ./cmd/schema -out ../../docs/run-archive.schema.json

// RunRecord is one completed shot as shown in the run table and exported to
// CSV. The jsonschema tags feed the schema generator under cmd/schema, which
// documents the archive format for anything that stores these records.
type RunRecord struct {
	ID       string        `json:"id" jsonschema:"title=Run id,description=Server-assigned identifier for this shot"`
	PlayedAt time.Time     `json:"played_at" jsonschema:"title=Launch time,description=Wall-clock instant the shot was launched"`
	Params   shotParamsDTO `json:"params" jsonschema:"description=Launch parameters the shot was solved with"`
	Stats    statsDTO      `json:"stats" jsonschema:"description=Final flight statistics"`
}

// RunArchive is the serialized form of a session's run history. Clients and
// external tools persist it as an opaque record; Version guards the layout.
type RunArchive struct {
	Version int         `json:"version" jsonschema:"title=Archive version"`
	Runs    []RunRecord `json:"runs"`
}

// RunLog keeps the most recent runs of one session, oldest first. It has its
// own lock so the CSV endpoint can read it without touching the session lock.
type RunLog struct {
	mu    sync.Mutex
	depth int
	runs  []RunRecord
}

func NewRunLog(depth int) *RunLog {
	if depth < 1 {
		depth = 1
	}
	return &RunLog{depth: depth}
}

// Append records a finished run, evicting the oldest once the log is full.
func (l *RunLog) Append(rec RunRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, rec)
	if len(l.runs) > l.depth {
		l.runs = append(l.runs[:0], l.runs[len(l.runs)-l.depth:]...)
	}
}

// List returns a copy of the recorded runs, oldest first.
func (l *RunLog) List() []RunRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]RunRecord(nil), l.runs...)
}

// Len reports how many runs are recorded.
func (l *RunLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.runs)
}

// Clear drops every recorded run.
func (l *RunLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = nil
}

// Archive snapshots the log in its serializable form.
func (l *RunLog) Archive() RunArchive {
	return RunArchive{Version: 1, Runs: l.List()}
}

var csvHeader = []string{
	"id", "played_at",
	"angle_deg", "speed_ms", "gravity", "mass_kg", "air", "drag_coeff", "start_height_m",
	"flight_time_s", "distance_m", "max_height_m", "time_to_apex_s",
	"launch_speed_ms", "impact_speed_ms", "collision",
}

// WriteCSV streams the run table in spreadsheet form, one row per run.
func (l *RunLog) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range l.List() {
		row := []string{
			rec.ID,
			rec.PlayedAt.UTC().Format(time.RFC3339),
			ftoa(rec.Params.Angle),
			ftoa(rec.Params.Speed),
			ftoa(rec.Params.Grav),
			ftoa(rec.Params.Mass),
			strconv.FormatBool(rec.Params.Air),
			ftoa(rec.Params.Drag),
			ftoa(rec.Params.Height),
			ftoa(rec.Stats.FlightTime),
			ftoa(rec.Stats.Distance),
			ftoa(rec.Stats.MaxHeight),
			ftoa(rec.Stats.TimeToApex),
			ftoa(rec.Stats.LaunchSpeed),
			ftoa(rec.Stats.ImpactSpeed),
			rec.Stats.Collision,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
