package storage

import (
	"encoding/json"
	"io"
	"math"
)

// ExportPoint is one grid sample. Non-finite values are written as null.
type ExportPoint struct {
	X      float64  `json:"x"`
	Real   *float64 `json:"real"`
	Dual   *float64 `json:"dual"`
	Status string   `json:"status"`
}

type ExportData struct {
	RunMetadata
	Points []ExportPoint `json:"points"`
}

// ExportJSON writes the metadata and values of runID to w as one document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	points, err := s.LoadValues(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Points:      make([]ExportPoint, len(points)),
	}
	for i, p := range points {
		data.Points[i] = ExportPoint{X: p.X, Real: jsonFloat(p.Real), Dual: jsonFloat(p.Dual), Status: p.Status}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
