package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/playback"
	"github.com/san-kum/kinchain/internal/spatial"
)

func testResult() *playback.Result {
	return &playback.Result{
		Frames: []playback.Frame{
			{Time: 0, Positions: []float64{0, 0}, End: spatial.Vec{Z: 1.2}},
			{Time: 0.01, Positions: []float64{0.1, 0.05}, End: spatial.Vec{X: 0.125, Z: 1.244}},
		},
		Metrics: map[string]float64{
			"path_length": 1.5,
		},
		Errors: []error{
			&playback.StepError{Step: 2, Time: 0.02, Wrapped: kinematics.ErrOutOfLimits},
		},
		EndJoint: "l1",
	}
}

func testMeta() RunMetadata {
	return RunMetadata{
		Chain:      "planar2",
		Dt:         0.01,
		Duration:   1.0,
		Trajectory: "sweep",
		Joints:     []string{"l0", "l1"},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testMeta(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "planar2-") {
		t.Errorf("expected run id prefixed with chain name, got %s", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Chain != "planar2" {
		t.Errorf("expected chain 'planar2', got '%s'", meta.Chain)
	}
	if meta.Frames != 2 {
		t.Errorf("expected 2 frames, got %d", meta.Frames)
	}
	if meta.EndJoint != "l1" {
		t.Errorf("expected end joint l1, got %s", meta.EndJoint)
	}
	if meta.Metrics["path_length"] != 1.5 {
		t.Errorf("expected path_length 1.5, got %f", meta.Metrics["path_length"])
	}
	if len(meta.Errors) != 1 || !strings.Contains(meta.Errors[0], "step 2") {
		t.Errorf("expected recorded step error, got %v", meta.Errors)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if got := frames[1].Positions; len(got) != 2 || got[0] != 0.1 || got[1] != 0.05 {
		t.Errorf("unexpected positions %v", got)
	}
	if end := frames[1].End; end.X != 0.125 || end.Z != 1.244 {
		t.Errorf("unexpected end %v", end)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for i := 0; i < 2; i++ {
		if _, err := st.Save(testMeta(), testResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID == runs[1].ID {
		t.Error("run ids should be unique")
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testMeta(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}

	data, err := os.ReadFile(filepath.Join(runDir, "poses.csv"))
	if err != nil {
		t.Fatalf("poses.csv not created: %v", err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if header != "time,l0,l1,end_x,end_y,end_z" {
		t.Errorf("unexpected header %q", header)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadFrames("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, testMeta(), testResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Steps != 2 || len(data.Positions) != 2 || len(data.End) != 2 {
		t.Errorf("unexpected export shape: %+v", data)
	}
	if data.End[0][2] != 1.2 {
		t.Errorf("expected end z 1.2, got %f", data.End[0][2])
	}
}
