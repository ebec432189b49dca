package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/bhsim/internal/sim"
)

type ExportData struct {
	Run     RunMetadata  `json:"run"`
	Samples []sim.Sample `json:"samples"`
}

// Export writes a stored run as one JSON document to w.
func (s *Store) Export(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	for i := range samples {
		sanitizeSample(&samples[i], &meta.NonFinite)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Samples: samples})
}

// sanitizeSample zeroes the non-finite energies of a sample loaded from
// CSV, which keeps NaN and Inf verbatim.
func sanitizeSample(sm *sim.Sample, bad *[]string) {
	field := func(v *float64, name string) {
		*v = finite(*v, fmt.Sprintf("samples[%d].%s", sm.Tick, name), bad)
	}
	field(&sm.Time, "time")
	field(&sm.Kinetic, "kinetic")
	field(&sm.Potential, "potential")
	field(&sm.Energy, "energy")
	field(&sm.Momentum, "momentum")
}

// ExportFile is Export into a file at path.
func (s *Store) ExportFile(runID, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Export(runID, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
