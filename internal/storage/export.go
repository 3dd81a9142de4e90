package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/orbitsim/internal/nbody"
	"github.com/san-kum/orbitsim/internal/sim"
)

type ExportFrame struct {
	Step      int          `json:"step"`
	Time      float64      `json:"time"`
	Positions [][3]float32 `json:"positions"`
}

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Frames []ExportFrame `json:"frames"`
}

func NewExportData(meta RunMetadata, frames []sim.Frame) ExportData {
	data := ExportData{Run: meta, Frames: make([]ExportFrame, len(frames))}
	for i, f := range frames {
		pos := make([][3]float32, len(f.Data)/nbody.VBOStride)
		for b := range pos {
			copy(pos[b][:], f.Data[b*nbody.VBOStride:b*nbody.VBOStride+3])
		}
		data.Frames[i] = ExportFrame{Step: f.Step, Time: f.Time, Positions: pos}
	}
	return data
}

func WriteJSON(w io.Writer, meta RunMetadata, frames []sim.Frame) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(meta, frames))
}

// ExportJSON writes a stored run to path, or to stdout when path is "-".
func (s *Store) ExportJSON(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	if path == "-" {
		return WriteJSON(os.Stdout, *meta, frames)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(f, *meta, frames)
}
