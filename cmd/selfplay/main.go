package main

import (
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"maru/internal/goban"
	"maru/internal/infer"
	"maru/internal/search"
)

func main() {
	modelPath := flag.String("model", "maru.onnx", "path to ONNX model file")
	libPath := flag.String("lib", "onnxruntime.so", "path to the onnxruntime shared library")
	games := flag.Int("games", 1, "number of games to play")
	parallel := flag.Int("parallel", 1, "games running at once")
	visits := flag.Int("visits", 400, "search visits per move")
	threads := flag.Int("threads", 2, "search threads per game")
	size := flag.Int("size", 19, "board size")
	komi := flag.Float64("komi", 7.5, "komi")
	batchSize := flag.Int("batch", 64, "max inference batch size")
	openings := flag.Int("openings", 8, "moves sampled from the raw policy at game start")
	maxMoves := flag.Int("maxmoves", 0, "max moves per game, 0 for 3*size*size")
	bench := flag.Bool("bench", false, "run the descent benchmark instead of games")
	pprofAddr := flag.String("pprof", "", "pprof listen address, empty to disable")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *pprofAddr != "" {
		go func() {
			log.Info().Str("addr", *pprofAddr).Msg("pprof listening")
			if err := http.ListenAndServe(*pprofAddr, nil); err != nil {
				log.Warn().Err(err).Msg("pprof failed")
			}
		}()
	}

	processor, err := infer.NewProcessor(
		func(device int) (infer.Model, error) {
			return infer.NewORTModel(infer.ORTConfig{
				ModelPath:   *modelPath,
				LibraryPath: *libPath,
				Device:      device,
				MaxBatch:    *batchSize,
				InputLen:    goban.ModelInputSize,
				OutputLen:   goban.ModelOutputSize,
			})
		},
		[]int{-1}, *batchSize, 1,
		goban.ModelInputSize, goban.ModelOutputSize)
	if err != nil {
		log.Fatal().Err(err).Msg("inference setup failed")
	}
	defer processor.Close()

	if *bench {
		runBenchmark(log, processor, *size, *komi, *threads, *visits)
		return
	}

	limit := *maxMoves
	if limit <= 0 {
		limit = 3 * *size * *size
	}

	var blackWins, whiteWins atomic.Int64

	var eg errgroup.Group
	eg.SetLimit(*parallel)

	for i := 0; i < *games; i++ {
		gameIndex := i
		eg.Go(func() error {
			score := playGame(log, processor, gameOptions{
				size:     *size,
				komi:     *komi,
				threads:  *threads,
				visits:   *visits,
				openings: *openings,
				maxMoves: limit,
				index:    gameIndex,
			})

			if score > 0 {
				blackWins.Add(1)
			} else {
				whiteWins.Add(1)
			}
			return nil
		})
	}

	eg.Wait()

	log.Info().
		Int64("black", blackWins.Load()).
		Int64("white", whiteWins.Load()).
		Msg("selfplay finished")
}

type gameOptions struct {
	size     int
	komi     float64
	threads  int
	visits   int
	openings int
	maxMoves int
	index    int
}

// playGame plays one engine-vs-engine game and returns the final score,
// positive for a black win.
func playGame(log zerolog.Logger, processor *infer.Processor, opts gameOptions) float64 {
	player := search.NewPlayer(processor, search.Options{
		Threads: opts.threads,
		Width:   opts.size,
		Height:  opts.size,
		Komi:    opts.komi,
		Rule:    goban.RuleCH,
		Superko: true,
	})
	defer player.Close()

	passes := 0

	for move := 0; move < opts.maxMoves && passes < 2; move++ {
		var candidate search.Candidate

		if move < opts.openings {
			candidate = player.GetRandom(1.0)
		} else {
			player.StartEvaluation(false, false, 0, 1.0, 0.0)
			player.WaitEvaluation(opts.visits, 0, 0, true)
			candidate = bestCandidate(player.GetCandidates())
		}

		if candidate.IsPass() {
			passes++
		} else {
			passes = 0
		}

		player.Play(candidate.X, candidate.Y)

		if move%20 == 0 {
			log.Debug().
				Int("game", opts.index).
				Int("move", move).
				Float64("winChance", candidate.WinChance()).
				Msg("progress")
		}
	}

	score := finalScore(player, opts.komi)
	log.Info().Int("game", opts.index).Float64("score", score).Msg("game over")
	return score
}

// bestCandidate picks the most visited move.
func bestCandidate(candidates []search.Candidate) search.Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Visits > best.Visits {
			best = c
		}
	}
	return best
}

// finalScore sums the board ownership under Chinese counting.
func finalScore(player *search.Player, komi float64) float64 {
	board := player.Board()

	total := 0
	for _, owner := range board.GetOwners(goban.Black, goban.RuleCH) {
		total += owner
	}

	return float64(total) - komi
}
