package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/pointfield/field"
)

// InstallRecord is one installs.csv row: a field becoming live.
type InstallRecord struct {
	Seq         int     `csv:"seq"`
	TimeSec     float64 `csv:"time"`
	Source      string  `csv:"source"`
	Mode        string  `csv:"mode"` // load or advance
	Width       int     `csv:"width"`
	Height      int     `csv:"height"`
	Primary     int     `csv:"primary"`
	Interactive int     `csv:"interactive"`
	Stride      int     `csv:"stride"`
	DecodeMS    float64 `csv:"decode_ms"`
	BuildMS     float64 `csv:"build_ms"`
	UploadMS    float64 `csv:"upload_ms"`
	WaitMS      float64 `csv:"wait_ms"`
}

// NewInstallRecord flattens an install reported at timeSec of the run.
func NewInstallRecord(seq int, timeSec float64, in field.Install) InstallRecord {
	mode := "load"
	if in.Advance {
		mode = "advance"
	}
	return InstallRecord{
		Seq:         seq,
		TimeSec:     timeSec,
		Source:      in.Source,
		Mode:        mode,
		Width:       in.Width,
		Height:      in.Height,
		Primary:     in.Primary,
		Interactive: in.Interactive,
		Stride:      in.Stride,
		DecodeMS:    ms(in.Decode),
		BuildMS:     ms(in.Build),
		UploadMS:    ms(in.Upload),
		WaitMS:      ms(in.Wait),
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// LogValue implements slog.LogValuer for structured logging.
func (r InstallRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("seq", r.Seq),
		slog.String("source", r.Source),
		slog.String("mode", r.Mode),
		slog.Int("primary", r.Primary),
		slog.Int("interactive", r.Interactive),
		slog.Int("stride", r.Stride),
		slog.Float64("decode_ms", r.DecodeMS),
		slog.Float64("build_ms", r.BuildMS),
		slog.Float64("upload_ms", r.UploadMS),
		slog.Float64("wait_ms", r.WaitMS),
	)
}
