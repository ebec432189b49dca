// Package storage keeps finished runs on disk, one directory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/sim"
	"github.com/san-kum/bhsim/internal/vec"
)

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
	bodiesFile   = "bodies.csv"
)

var ticksHeader = []string{"tick", "time", "kinetic", "potential", "energy", "momentum", "nodes", "height", "escaped", "elapsed_ns"}

var bodiesHeader = []string{"name", "mass", "radius", "x", "y", "z", "vx", "vy", "vz", "color"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        uint64             `json:"seed"`
	Bodies      int                `json:"bodies"`
	Theta       float64            `json:"theta"`
	Method      string             `json:"method"`
	Integrator  string             `json:"integrator"`
	HalfWidth   float64            `json:"universe_half_width"`
	Mode        body.Mode          `json:"mode"`
	Ticks       int                `json:"ticks"`
	EnergyDrift float64            `json:"energy_drift"`
	ElapsedMS   int64              `json:"elapsed_ms"`
	Metrics     map[string]float64 `json:"metrics"`
	// NonFinite names the fields stored as 0 because they were NaN or
	// infinite, as after a run stopped by an invalid state.
	NonFinite []string `json:"non_finite,omitempty"`
}

// Save writes the run's metadata, its samples and the final body states
// into a new run directory and returns the run ID.
// A failed save leaves no run directory behind.
func (s *Store) Save(scenario string, seed uint64, cfg sim.Config, bodies []*body.Body, result *sim.Result) (runID string, err error) {
	now := time.Now()
	runID = fmt.Sprintf("%s_%d", scenario, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
			runID = ""
		}
	}()

	var bad []string
	meta := RunMetadata{
		ID:          runID,
		Scenario:    scenario,
		Timestamp:   now,
		Seed:        seed,
		Bodies:      len(bodies),
		Theta:       cfg.Theta,
		Method:      string(cfg.Method),
		Integrator:  cfg.Integrator,
		HalfWidth:   cfg.HalfWidth,
		Mode:        cfg.Mode,
		Ticks:       result.TicksTaken,
		EnergyDrift: finite(result.EnergyDrift, "energy_drift", &bad),
		ElapsedMS:   result.Elapsed.Milliseconds(),
		Metrics:     make(map[string]float64, len(result.Metrics)),
	}
	for name, v := range result.Metrics {
		meta.Metrics[name] = finite(v, "metrics."+name, &bad)
	}
	sort.Strings(bad)
	meta.NonFinite = bad

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, ticksFile), ticksHeader, sampleRows(result.Samples)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, bodiesFile), bodiesHeader, bodyRows(bodies)); err != nil {
		return "", err
	}
	return runID, nil
}

// finite returns v, or 0 after recording name when v is NaN or infinite;
// JSON has no encoding for either.
func finite(v float64, name string, bad *[]string) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		*bad = append(*bad, name)
		return 0
	}
	return v
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func ff(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func sampleRows(samples []sim.Sample) [][]string {
	rows := make([][]string, 0, len(samples))
	for _, sm := range samples {
		rows = append(rows, []string{
			strconv.Itoa(sm.Tick),
			ff(sm.Time),
			ff(sm.Kinetic),
			ff(sm.Potential),
			ff(sm.Energy),
			ff(sm.Momentum),
			strconv.Itoa(sm.Nodes),
			strconv.Itoa(sm.Height),
			strconv.Itoa(sm.Escaped),
			strconv.FormatInt(sm.Elapsed.Nanoseconds(), 10),
		})
	}
	return rows
}

func bodyRows(bodies []*body.Body) [][]string {
	rows := make([][]string, 0, len(bodies))
	for _, b := range bodies {
		rows = append(rows, []string{
			b.Name, ff(b.Mass), ff(b.Radius),
			ff(b.Position.X()), ff(b.Position.Y()), ff(b.Position.Z()),
			ff(b.Velocity.X()), ff(b.Velocity.Y()), ff(b.Velocity.Z()),
			b.Color,
		})
	}
	return rows
}

// List returns the metadata of every run, newest first. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

// LoadSamples reads a run's per-tick samples. Malformed rows are skipped.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, ticksFile))
	if err != nil {
		return nil, err
	}

	samples := make([]sim.Sample, 0, len(records))
	for _, rec := range records {
		if len(rec) != len(ticksHeader) {
			continue
		}
		var p parser
		sm := sim.Sample{
			Tick:      p.int(rec[0]),
			Time:      p.float(rec[1]),
			Kinetic:   p.float(rec[2]),
			Potential: p.float(rec[3]),
			Energy:    p.float(rec[4]),
			Momentum:  p.float(rec[5]),
			Nodes:     p.int(rec[6]),
			Height:    p.int(rec[7]),
			Escaped:   p.int(rec[8]),
			Elapsed:   time.Duration(p.int(rec[9])),
		}
		if p.err != nil {
			continue
		}
		samples = append(samples, sm)
	}
	return samples, nil
}

// LoadBodies reads the body states a run ended with.
func (s *Store) LoadBodies(runID string) ([]*body.Body, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, bodiesFile))
	if err != nil {
		return nil, err
	}

	bodies := make([]*body.Body, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(bodiesHeader) {
			return nil, fmt.Errorf("run %s: body row %d has %d fields", runID, i+1, len(rec))
		}
		var p parser
		mass, radius := p.float(rec[1]), p.float(rec[2])
		pos := vec.New(p.float(rec[3]), p.float(rec[4]), p.float(rec[5]))
		vel := vec.New(p.float(rec[6]), p.float(rec[7]), p.float(rec[8]))
		if p.err != nil {
			return nil, fmt.Errorf("run %s: body row %d: %w", runID, i+1, p.err)
		}
		b, err := body.New(rec[0], mass, radius, pos, vel, rec[9])
		if err != nil {
			return nil, fmt.Errorf("run %s: body row %d: %w", runID, i+1, err)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

// parser keeps the first conversion error.
type parser struct{ err error }

func (p *parser) float(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *parser) int(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}
