// Command debug plays a scripted sequence, renders the board, and dumps
// the evaluated candidates. Without a model file it falls back to a flat
// policy so the search machinery can be inspected on its own.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"maru/internal/goban"
	"maru/internal/infer"
	"maru/internal/search"
)

// flatModel is a deterministic stand-in: uniform policy, even value.
type flatModel struct{}

func (flatModel) Forward(inputs, outputs []float32, n int) error {
	length := goban.ModelSize * goban.ModelSize

	for i := 0; i < n; i++ {
		out := outputs[i*goban.ModelOutputSize : (i+1)*goban.ModelOutputSize]
		for j := 0; j < length; j++ {
			out[j] = 1.0 / float32(length)
		}
		out[goban.ModelPredictions*length] = 0.5
	}

	return nil
}

func main() {
	modelPath := flag.String("model", "", "path to ONNX model file, empty for a flat policy")
	libPath := flag.String("lib", "onnxruntime.so", "path to the onnxruntime shared library")
	moves := flag.String("moves", "", "moves to play, e.g. \"3,3 15,15 3,15\"")
	size := flag.Int("size", 19, "board size")
	komi := flag.Float64("komi", 7.5, "komi")
	visits := flag.Int("visits", 64, "search visits")
	threads := flag.Int("threads", 1, "search threads")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	factory := func(device int) (infer.Model, error) {
		if *modelPath == "" {
			return flatModel{}, nil
		}
		return infer.NewORTModel(infer.ORTConfig{
			ModelPath:   *modelPath,
			LibraryPath: *libPath,
			Device:      device,
			InputLen:    goban.ModelInputSize,
			OutputLen:   goban.ModelOutputSize,
		})
	}

	processor, err := infer.NewProcessor(
		factory, []int{-1}, 64, 1,
		goban.ModelInputSize, goban.ModelOutputSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inference setup failed: %v\n", err)
		os.Exit(1)
	}
	defer processor.Close()

	player := search.NewPlayer(processor, search.Options{
		Threads: *threads,
		Width:   *size,
		Height:  *size,
		Komi:    *komi,
		Rule:    goban.RuleCH,
		Seed:    *seed,
	})
	defer player.Close()

	for _, move := range strings.Fields(*moves) {
		parts := strings.SplitN(move, ",", 2)
		if len(parts) != 2 {
			fmt.Fprintf(os.Stderr, "bad move %q\n", move)
			os.Exit(1)
		}
		x, errX := strconv.Atoi(parts[0])
		y, errY := strconv.Atoi(parts[1])
		if errX != nil || errY != nil {
			fmt.Fprintf(os.Stderr, "bad move %q\n", move)
			os.Exit(1)
		}

		captured := player.Play(x, y)
		fmt.Printf("play (%d,%d): captured %d\n", x, y, captured)
	}

	printBoard(player.Board())

	player.StartEvaluation(false, false, 0, 1.0, 0.0)
	player.WaitEvaluation(*visits, 0, 60*time.Second, true)

	fmt.Println("candidates:")
	for i, c := range player.GetCandidates() {
		fmt.Printf("%2d. %s\n", i+1, c)
		if i >= 9 {
			break
		}
	}
}

// printBoard renders the board with colored stones on capable terminals.
func printBoard(board *goban.Board) {
	black := termenv.String("X").Foreground(termenv.ANSIBrightRed).String()
	white := termenv.String("O").Foreground(termenv.ANSIBrightCyan).String()

	fmt.Print("   ")
	for x := 0; x < board.Width(); x++ {
		fmt.Printf("%2d", x)
	}
	fmt.Println()

	for y := 0; y < board.Height(); y++ {
		fmt.Printf("%2d ", y)
		for x := 0; x < board.Width(); x++ {
			switch board.GetColor(x, y) {
			case goban.Black:
				fmt.Printf(" %s", black)
			case goban.White:
				fmt.Printf(" %s", white)
			default:
				fmt.Print(" .")
			}
		}
		fmt.Println()
	}
}
