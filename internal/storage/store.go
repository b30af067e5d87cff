// Package storage keeps solved runs on disk: one directory per run holding
// metadata.json, states.csv and variables.csv.
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

	"github.com/san-kum/battsim/internal/solution"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile  = "metadata.json"
	statesFile    = "states.csv"
	variablesFile = "variables.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir is the directory of a run.
func (s *Store) Dir(runID string) string { return filepath.Join(s.baseDir, runID) }

type RunMetadata struct {
	ID              string             `json:"id"`
	Model           string             `json:"model"`
	Timestamp       time.Time          `json:"timestamp"`
	Solver          string             `json:"solver"`
	Tolerance       float64            `json:"tolerance"`
	Termination     string             `json:"termination"`
	Options         map[string]string  `json:"options,omitempty"`
	Inputs          map[string]float64 `json:"inputs,omitempty"`
	SetUpTime       float64            `json:"set_up_time_s"`
	IntegrationTime float64            `json:"integration_time_s"`
	SolveTime       float64            `json:"solve_time_s"`
	States          int                `json:"states"`
	Points          int                `json:"points"`
	Variables       []string           `json:"variables"`
	Final           map[string]float64 `json:"final"`
}

// RunInfo describes what produced a solution.
type RunInfo struct {
	Model     string
	Tolerance float64
	Options   map[string]string
}

// Save writes sol under a fresh run ID. Only variables with one entry per
// time point are written to variables.csv; unknown names are skipped.
func (s *Store) Save(info RunInfo, sol *solution.Solution, variables []string) (string, error) {
	y, err := sol.Y()
	if err != nil {
		return "", err
	}

	runID := uuid.NewString()
	runDir := s.Dir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	series := make(map[string][]float64)
	var names []string
	for _, name := range variables {
		pv, err := sol.Variable(name)
		if err != nil || pv.Points() != 1 {
			continue
		}
		series[name] = pv.Series()
		names = append(names, name)
	}

	meta := RunMetadata{
		ID:              runID,
		Model:           info.Model,
		Timestamp:       time.Now(),
		Solver:          sol.Solver,
		Tolerance:       info.Tolerance,
		Termination:     sol.Termination,
		Options:         info.Options,
		Inputs:          sol.Inputs,
		SetUpTime:       sol.SetUpTime.Seconds(),
		IntegrationTime: sol.IntegrationTime.Seconds(),
		SolveTime:       sol.SolveTime.Seconds(),
		States:          y.RawMatrix().Rows,
		Points:          len(sol.T),
		Variables:       names,
		Final:           make(map[string]float64, len(names)),
	}
	for _, name := range names {
		meta.Final[name] = series[name][len(series[name])-1]
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	rows, _ := y.Dims()
	header := []string{"time"}
	for i := range rows {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	if err := writeCSV(filepath.Join(runDir, statesFile), header, sol.T, func(j int) []float64 {
		col := make([]float64, rows)
		for i := range rows {
			col[i] = y.At(i, j)
		}
		return col
	}); err != nil {
		return "", err
	}

	header = append([]string{"time"}, names...)
	if err := writeCSV(filepath.Join(runDir, variablesFile), header, sol.T, func(j int) []float64 {
		row := make([]float64, len(names))
		for i, name := range names {
			row[i] = series[name][j]
		}
		return row
	}); err != nil {
		return "", err
	}

	return runID, nil
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

func writeCSV(path string, header []string, times []float64, row func(j int) []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for j, t := range times {
		record := []string{strconv.FormatFloat(t, 'g', -1, 64)}
		for _, v := range row(j) {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
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

// LoadStates returns the stored state vectors, one per time point.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	_, rows, times, err := s.readCSV(runID, statesFile)
	return rows, times, err
}

// LoadVariables returns each stored variable's time series.
func (s *Store) LoadVariables(runID string) (map[string][]float64, []float64, error) {
	header, rows, times, err := s.readCSV(runID, variablesFile)
	if err != nil {
		return nil, nil, err
	}
	out := make(map[string][]float64, len(header))
	for i, name := range header {
		col := make([]float64, len(rows))
		for j, row := range rows {
			if i < len(row) {
				col[j] = row[i]
			}
		}
		out[name] = col
	}
	return out, times, nil
}

func (s *Store) readCSV(runID, name string) ([]string, [][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) == 0 {
		return nil, [][]float64{}, []float64{}, nil
	}

	header := records[0][1:]
	times := make([]float64, 0, len(records)-1)
	rows := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("storage: %s: bad time %q", name, record[0])
		}
		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("storage: %s: bad value %q", name, field)
			}
			row = append(row, v)
		}
		times = append(times, t)
		rows = append(rows, row)
	}
	return header, rows, times, nil
}
