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
	"github.com/san-kum/kinchain/internal/playback"
	"github.com/san-kum/kinchain/internal/spatial"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	posesFile    = "poses.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Dir() string {
	return s.baseDir
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Chain      string             `json:"chain"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Trajectory string             `json:"trajectory"`
	Clamp      bool               `json:"clamp"`
	Joints     []string           `json:"joints"`
	EndJoint   string             `json:"end_joint"`
	Frames     int                `json:"frames"`
	Errors     []string           `json:"errors,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the run under a fresh ID and returns it. ID, Timestamp, Frames,
// EndJoint, Errors and Metrics in meta are filled from the result.
func (s *Store) Save(meta RunMetadata, result *playback.Result) (string, error) {
	runID := fmt.Sprintf("%s-%s", meta.Chain, uuid.NewString())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Frames = len(result.Frames)
	meta.EndJoint = result.EndJoint
	meta.Metrics = result.Metrics
	meta.Errors = nil
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writePoses(filepath.Join(runDir, posesFile), meta.Joints, result); err != nil {
		return "", err
	}

	return runID, nil
}

func writePoses(path string, joints []string, result *playback.Result) error {
	csvFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)

	dof := len(joints)
	if len(result.Frames) > 0 && len(result.Frames[0].Positions) != dof {
		dof = len(result.Frames[0].Positions)
		joints = nil
	}

	header := []string{"time"}
	for i := 0; i < dof; i++ {
		if joints != nil {
			header = append(header, joints[i])
		} else {
			header = append(header, fmt.Sprintf("q%d", i))
		}
	}
	header = append(header, "end_x", "end_y", "end_z")
	if err := w.Write(header); err != nil {
		return err
	}

	for _, f := range result.Frames {
		row := []string{formatFloat(f.Time)}
		for _, q := range f.Positions {
			row = append(row, formatFloat(q))
		}
		row = append(row, formatFloat(f.End.X), formatFloat(f.End.Y), formatFloat(f.End.Z))
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns every stored run, newest first.
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

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), metadataFile))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
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
			return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames reads the recorded joint positions and end positions. Poses of
// intermediate nodes are not stored.
func (s *Store) LoadFrames(runID string) ([]playback.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, posesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
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
		return []playback.Frame{}, nil
	}

	frames := make([]playback.Frame, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 4 {
			continue
		}

		vals := make([]float64, len(record))
		ok := true
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}

		n := len(vals)
		frames = append(frames, playback.Frame{
			Time:      vals[0],
			Positions: vals[1 : n-3],
			End:       spatial.Vec{X: vals[n-3], Y: vals[n-2], Z: vals[n-1]},
		})
	}

	return frames, nil
}
