package game

import (
	"github.com/pthm-cable/pointfield/telemetry"
)

// flushTelemetry closes the stats window when due, logging and writing it.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush() {
		return
	}

	primary, interactive := g.field.Counts()
	stats := g.collector.Flush(telemetry.FieldState{
		Source:      g.field.Current(),
		Primary:     primary,
		Interactive: interactive,
		TouchHeat:   telemetry.MeanHeat(g.field.Touch().Data()),
	})
	timing := g.timer.Flush()

	if g.logStats {
		stats.LogStats()
		g.logger.Info("timing", "window", timing)
	}

	if err := g.outputManager.WriteWindow(stats); err != nil {
		g.logger.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WriteTiming(timing); err != nil {
		g.logger.Error("failed to write timing", "error", err)
	}
}
