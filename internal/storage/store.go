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

	"github.com/san-kum/encsim/internal/experiment"
	"github.com/san-kum/encsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	archiveFile  = "run.msgpack.zst"
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

func (s *Store) Dir() string {
	return s.baseDir
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Mode      string             `json:"mode"`
	Samples   int                `json:"samples"`
	Stats     sim.Stats          `json:"stats"`
	Metrics   map[string]float64 `json:"metrics"`
}

func trackFile(k int) string {
	return fmt.Sprintf("ac%d.csv", k+1)
}

// Save writes a run directory holding metadata.json, one CSV track per
// aircraft and a compressed archive of the full encounter and result.
func (s *Store) Save(enc experiment.Encounter, result *sim.Result) (string, error) {
	name := enc.Name
	if name == "" {
		name = "encounter"
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%s", name, now.Format("20060102_150405"))
	runDir := filepath.Join(s.baseDir, runID)
	for i := 2; ; i++ {
		if _, err := os.Stat(runDir); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%s_%d", name, now.Format("20060102_150405"), i)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	cfg := enc.Config()
	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Dt:        cfg.Constants.Dt,
		Duration:  cfg.Duration,
		Mode:      cfg.Encounter.Mode.String(),
		Samples:   result.Len(),
		Stats:     result.Stats,
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	for k, track := range result.Aircraft {
		if err := writeTrack(filepath.Join(runDir, trackFile(k)), track); err != nil {
			return "", err
		}
	}

	f, err := os.Create(filepath.Join(runDir, archiveFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteArchive(f, &Run{Metadata: meta, Encounter: enc, Result: result}); err != nil {
		return "", err
	}

	return runID, f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func writeTrack(path string, track []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(sim.Channels); err != nil {
		return err
	}

	row := make([]string, len(sim.Channels))
	for _, s := range track {
		for j, v := range s.Values() {
			row[j] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// List returns the stored runs, newest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
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

// LoadTracks reads the per-aircraft CSV tracks of a run.
func (s *Store) LoadTracks(runID string) ([2][]sim.Sample, error) {
	var tracks [2][]sim.Sample
	for k := range tracks {
		track, err := readTrack(filepath.Join(s.baseDir, runID, trackFile(k)))
		if err != nil {
			if os.IsNotExist(err) {
				return tracks, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
			}
			return tracks, err
		}
		tracks[k] = track
	}
	return tracks, nil
}

func readTrack(path string) ([]sim.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(sim.Channels)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	track := make([]sim.Sample, 0, len(records)-1)
	vals := make([]float64, len(sim.Channels))
	for i, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", filepath.Base(path), i+1, err)
			}
			vals[j] = v
		}
		track = append(track, sim.Sample{
			T: vals[0], N: vals[1], E: vals[2], H: vals[3],
			V: vals[4], Phi: vals[5], Theta: vals[6], Psi: vals[7],
		})
	}

	return track, nil
}

// LoadRun reads the archived encounter and result of a run.
func (s *Store) LoadRun(runID string) (*Run, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, archiveFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	return ReadArchive(f)
}

// Latest returns the ID of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("%w: no runs in %s", ErrRunNotFound, s.baseDir)
	}
	return runs[0].ID, nil
}
