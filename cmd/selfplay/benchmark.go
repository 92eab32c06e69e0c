package main

import (
	"time"

	"github.com/rs/zerolog"

	"maru/internal/goban"
	"maru/internal/infer"
	"maru/internal/search"
)

// runBenchmark measures descent throughput on an empty board.
func runBenchmark(log zerolog.Logger, processor *infer.Processor, size int, komi float64, threads, visits int) {
	player := search.NewPlayer(processor, search.Options{
		Threads: threads,
		Width:   size,
		Height:  size,
		Komi:    komi,
		Rule:    goban.RuleCH,
	})
	defer player.Close()

	start := time.Now()

	player.StartEvaluation(false, false, 0, 1.0, 0.0)
	player.WaitEvaluation(visits, 0, 0, true)

	elapsed := time.Since(start)
	done, playouts := player.SearchCounts()
	total, used, pooled := player.NodeStats()

	log.Info().
		Int("visits", done).
		Int("playouts", playouts).
		Dur("elapsed", elapsed).
		Float64("visitsPerSec", float64(done)/elapsed.Seconds()).
		Int("nodesTotal", total).
		Int("nodesUsed", used).
		Int("nodesPooled", pooled).
		Msg("benchmark")
}
