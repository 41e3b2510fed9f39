package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/starfield/internal/sim"
	"github.com/san-kum/starfield/internal/starfield"
)

type RunData struct {
	Seed     int64              `json:"seed"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	FPS      int                `json:"fps"`
	Frames   int                `json:"frames"`
	Metrics  map[string]float64 `json:"metrics"`
	Draws    DrawData           `json:"draws"`
	PerFrame []FrameData        `json:"per_frame,omitempty"`
}

type DrawData struct {
	Clears  int `json:"clears"`
	Circles int `json:"circles"`
	Lines   int `json:"lines"`
}

type FrameData struct {
	Frame       int     `json:"frame"`
	ElapsedMs   float64 `json:"elapsed_ms"`
	Lines       int     `json:"lines"`
	Wrapped     int     `json:"wrapped"`
	MeanOpacity float64 `json:"mean_opacity"`
}

// NewRunData summarizes a headless run. Per-frame records are included when
// perFrame is set.
func NewRunData(cfg sim.Config, res *sim.Result, perFrame bool) RunData {
	size := cfg.Size.Clamp()
	data := RunData{
		Seed:    res.Seed,
		Width:   size.Width,
		Height:  size.Height,
		FPS:     cfg.FPS,
		Frames:  len(res.Stats),
		Metrics: res.Metrics,
		Draws: DrawData{
			Clears:  res.Draws.Clears,
			Circles: res.Draws.Circles,
			Lines:   res.Draws.Lines,
		},
	}
	if perFrame {
		data.PerFrame = make([]FrameData, len(res.Stats))
		for i, s := range res.Stats {
			data.PerFrame[i] = frameData(s)
		}
	}
	return data
}

func frameData(s starfield.FrameStats) FrameData {
	return FrameData{
		Frame:       s.Frame,
		ElapsedMs:   float64(s.Elapsed.Microseconds()) / 1000,
		Lines:       s.Lines,
		Wrapped:     s.Wrapped,
		MeanOpacity: s.MeanOpacity,
	}
}

// WriteJSON writes runs as an indented JSON array.
func WriteJSON(w io.Writer, runs []RunData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}

// WriteCSV writes one row per frame of res.
func WriteCSV(w io.Writer, res *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"seed", "frame", "elapsed_ms", "lines", "wrapped", "mean_opacity"}); err != nil {
		return err
	}
	seed := strconv.FormatInt(res.Seed, 10)
	for _, s := range res.Stats {
		f := frameData(s)
		row := []string{
			seed,
			strconv.Itoa(f.Frame),
			strconv.FormatFloat(f.ElapsedMs, 'f', 3, 64),
			strconv.Itoa(f.Lines),
			strconv.Itoa(f.Wrapped),
			strconv.FormatFloat(f.MeanOpacity, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
