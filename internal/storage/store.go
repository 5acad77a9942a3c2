package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/dualx/internal/sweep"
)

const (
	metadataFile = "metadata.json"
	valuesFile   = "values.csv"
)

var valuesHeader = []string{"x", "real", "dual", "status"}

// ErrNotFound indicates a run ID with no stored metadata.
var ErrNotFound = errors.New("storage: run not found")

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
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Expr       string    `json:"expr"`
	Steps      string    `json:"steps"`
	Timestamp  time.Time `json:"timestamp"`
	Mode       string    `json:"mode"`
	From       float64   `json:"from"`
	To         float64   `json:"to"`
	Samples    int       `json:"samples"`
	Seed       float64   `json:"seed"`
	Failed     int       `json:"failed"`
	Advisories []string  `json:"advisories,omitempty"`
	ElapsedMS  float64   `json:"elapsed_ms"`
}

// Save writes res under a new run directory and returns its ID.
func (s *Store) Save(res *sweep.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", slug(res.Name), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      res.Name,
		Expr:      res.Expr,
		Steps:     res.Steps,
		Timestamp: now,
		Mode:      res.Config.Mode,
		From:      res.Config.From,
		To:        res.Config.To,
		Samples:   res.Config.Samples,
		Seed:      res.Config.Seed,
		Failed:    res.Failed,
		ElapsedMS: float64(res.Elapsed.Microseconds()) / 1000,
	}
	for _, a := range res.Advisories {
		meta.Advisories = append(meta.Advisories, a.String())
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeValues(filepath.Join(runDir, valuesFile), res.Points); err != nil {
		return "", err
	}
	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeValues(path string, points []sweep.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(valuesHeader); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{formatFloat(p.X), formatFloat(p.Real), formatFloat(p.Dual), p.Status}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// Latest returns the most recent run.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: no runs in %s", ErrNotFound, s.baseDir)
	}
	return &runs[len(runs)-1], nil
}

// LoadValues reads the stored grid. Point.Err is not persisted.
func (s *Store) LoadValues(runID string) ([]sweep.Point, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, valuesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(valuesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []sweep.Point{}, nil
	}

	points := make([]sweep.Point, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [3]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		points = append(points, sweep.Point{X: vals[0], Real: vals[1], Dual: vals[2], Status: record[3]})
	}
	return points, nil
}

// ExportCSV copies the stored values.csv of runID to w.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, valuesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func slug(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
