package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/orbitsim/internal/nbody"
	"github.com/san-kum/orbitsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
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

// RunInfo describes how a run was configured.
type RunInfo struct {
	Name    string
	Bodies  int
	Dt      float32
	Steps   int
	Params  nbody.Params
	Backend string
}

type TimingInfo struct {
	AccelerateMs float64 `json:"accelerate_ms"`
	AdvanceMs    float64 `json:"advance_ms"`
	MeanStepMs   float64 `json:"mean_step_ms"`
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Bodies      int                `json:"bodies"`
	Dt          float32            `json:"dt"`
	Steps       int                `json:"steps"`
	StepsTaken  int                `json:"steps_taken"`
	Params      nbody.Params       `json:"params"`
	Backend     string             `json:"backend"`
	Frames      int                `json:"frames"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	Timing      TimingInfo         `json:"timing"`
}

// JSON has no encoding for NaN or Inf; a diverged run stores -1 drift and
// drops the affected metrics.
func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func finiteMetrics(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", info.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	mean := result.Timing.Mean()
	meta := RunMetadata{
		ID:          runID,
		Name:        info.Name,
		Timestamp:   now,
		Bodies:      info.Bodies,
		Dt:          info.Dt,
		Steps:       info.Steps,
		StepsTaken:  result.StepsTaken,
		Params:      info.Params,
		Backend:     info.Backend,
		Frames:      len(result.Frames),
		EnergyDrift: finiteOr(result.EnergyDrift, -1),
		Metrics:     finiteMetrics(result.Metrics),
		Timing: TimingInfo{
			AccelerateMs: millis(result.Timing.Accelerate),
			AdvanceMs:    millis(result.Timing.Advance),
			MeanStepMs:   millis(mean.Total()),
		},
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
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

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func writeFrames(path string, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"step", "time", "body", "x", "y", "z"}); err != nil {
		return err
	}

	for _, fr := range frames {
		step := strconv.Itoa(fr.Step)
		t := strconv.FormatFloat(fr.Time, 'f', 6, 64)
		for b := 0; b*nbody.VBOStride < len(fr.Data); b++ {
			v := fr.Data[b*nbody.VBOStride:]
			row := []string{step, t, strconv.Itoa(b), formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2])}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

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
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames reads the sampled frames of a run back into readback layout.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return readFrames(file, meta.Bodies)
}

func readFrames(r io.Reader, bodies int) ([]sim.Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	frames := make([]sim.Frame, 0)
	for i := 1; i < len(records); i++ {
		rec := records[i]

		step, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, i+1, err)
		}
		t, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, i+1, err)
		}
		body, err := strconv.Atoi(rec[2])
		if err != nil || body < 0 || body >= bodies {
			return nil, fmt.Errorf("%s line %d: bad body index %q", framesFile, i+1, rec[2])
		}

		if len(frames) == 0 || frames[len(frames)-1].Step != step {
			frames = append(frames, sim.Frame{Step: step, Time: t, Data: make([]float32, bodies*nbody.VBOStride)})
		}
		data := frames[len(frames)-1].Data[body*nbody.VBOStride:]
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(rec[3+k], 32)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", framesFile, i+1, err)
			}
			data[k] = float32(v)
		}
		data[3] = 1
	}

	return frames, nil
}
