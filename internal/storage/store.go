package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/extrema/internal/analysis"
	"github.com/san-kum/extrema/internal/calculus"
)

var ErrRunNotFound = errors.New("storage: run not found")

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
	ID         string                     `json:"id"`
	Timestamp  time.Time                  `json:"timestamp"`
	Function   string                     `json:"function"`
	Derivative string                     `json:"derivative"`
	Interval   calculus.Interval          `json:"interval"`
	Points     []float64                  `json:"points"`
	Roots      []float64                  `json:"roots"`
	Stationary []analysis.StationaryPoint `json:"stationary"`
	Extrema    *analysis.Extrema          `json:"extrema,omitempty"`
	Failures   []analysis.FailureReport   `json:"failures,omitempty"`
	Log        []string                   `json:"log"`
}

// Save writes report under a fresh run id: metadata.json plus the sampled
// curve as curve.csv.
func (s *Store) Save(report *analysis.Report) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  time.Now(),
		Function:   report.Function,
		Derivative: report.Derivative,
		Interval:   report.Interval,
		Points:     report.Points,
		Roots:      report.Roots,
		Stationary: report.Stationary,
		Extrema:    report.Extrema,
		Failures:   report.Failures,
		Log:        report.Log,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "curve.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCurveCSV(csvFile, report.Curve); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadCurve(runID string) ([]analysis.Point, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "curve.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
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
		return []analysis.Point{}, nil
	}

	pts := make([]analysis.Point, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		x, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		y, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		pts = append(pts, analysis.Point{X: x, Y: y})
	}
	return pts, nil
}
