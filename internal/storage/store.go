package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/spinchain/internal/config"
	"github.com/san-kum/spinchain/internal/export"
	"github.com/san-kum/spinchain/internal/micromag"
)

const (
	metadataFile       = "metadata.json"
	magnetizationsFile = "magnetizations.csv"
	historyFile        = "history.csv"
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

type RunMetadata struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Timestamp     time.Time      `json:"timestamp"`
	Size          int            `json:"size"`
	Rule          string         `json:"rule"`
	Init          string         `json:"init"`
	Status        string         `json:"status"`
	Iterations    int            `json:"iterations"`
	MaxChange     float64        `json:"max_change"`
	InitialEnergy float64        `json:"initial_energy"`
	FinalEnergy   float64        `json:"final_energy"`
	EnergyChange  float64        `json:"energy_change"`
	Elapsed       time.Duration  `json:"elapsed_ns"`
	Config        *config.Config `json:"config"`
}

// Save writes the run under a new directory and returns its id.
func (s *Store) Save(name string, cfg *config.Config, result *micromag.Result, elapsed time.Duration) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d_%s", name, now.Unix(), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Name:          name,
		Timestamp:     now,
		Size:          len(result.Final),
		Rule:          result.Rule,
		Init:          cfg.Init,
		Status:        result.Status.String(),
		Iterations:    result.Iterations,
		MaxChange:     result.MaxChange,
		InitialEnergy: result.InitialEnergy,
		FinalEnergy:   result.FinalEnergy,
		EnergyChange:  result.EnergyChange,
		Elapsed:       elapsed,
		Config:        cfg,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	magFile, err := os.Create(filepath.Join(runDir, magnetizationsFile))
	if err != nil {
		return "", err
	}
	defer magFile.Close()
	if err := export.WriteCSV(magFile, result.Final); err != nil {
		return "", err
	}

	if err := writeHistory(filepath.Join(runDir, historyFile), result.History); err != nil {
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

func writeHistory(path string, history []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"iteration", "max_change"}); err != nil {
		return err
	}
	for i, v := range history {
		row := []string{strconv.Itoa(i + 1), strconv.FormatFloat(v, 'g', -1, 64)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all readable runs, oldest first.
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
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadMagnetizations(runID string) (micromag.Snapshot, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, magnetizationsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return export.ReadCSV(f)
}

func (s *Store) LoadHistory(runID string) ([]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, historyFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []float64{}, nil
	}

	history := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		history = append(history, v)
	}

	return history, nil
}
