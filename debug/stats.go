package debug

// Periodic load logger enabled when config.Debug is true.
// Correlates capture pacing with host CPU load, process RSS and Go heap so a
// degraded frame rate can be traced to its cause.

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/soocke/screenrec/domain/capture"
)

// StatsSource supplies live producer counters; any field may be nil.
type StatsSource struct {
	Video       func() capture.CaptureStats
	AudioBlocks func() uint64
}

// StartStatsLogger logs load and capture counters every interval until ctx
// is done. It is best-effort; a failing query is logged once and skipped.
func StartStatsLogger(ctx context.Context, interval time.Duration, src StatsSource, logger *slog.Logger) {
	if logger == nil {
		return
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	proc, procErr := process.NewProcess(int32(os.Getpid()))
	if procErr != nil {
		logger.Warn("stats: process handle unavailable", slog.String("err", procErr.Error()))
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		var cpuErrLogged, rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)

			attrs := []any{
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
				slog.Uint64("heap_inuse", ms.HeapInuse),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			}
			if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
				attrs = append(attrs, slog.Float64("host_cpu", pct[0]))
			} else if err != nil && !cpuErrLogged {
				logger.Warn("stats: cpu percent failed", slog.String("err", err.Error()))
				cpuErrLogged = true
			}
			if proc != nil {
				if mi, err := proc.MemoryInfo(); err == nil {
					attrs = append(attrs, slog.Uint64("rss", mi.RSS))
				} else if !rssErrLogged {
					logger.Warn("stats: rss query failed", slog.String("err", err.Error()))
					rssErrLogged = true
				}
			}
			if src.Video != nil {
				st := src.Video()
				attrs = append(attrs,
					slog.Uint64("frames", st.Frames),
					slog.Uint64("skipped", st.Skipped),
					slog.Uint64("overruns", st.Overruns),
					slog.Duration("avg_grab", st.AvgGrab),
				)
			}
			if src.AudioBlocks != nil {
				attrs = append(attrs, slog.Uint64("audio_blocks", src.AudioBlocks()))
			}
			logger.Info("stats", attrs...)
		}
	}()
}
