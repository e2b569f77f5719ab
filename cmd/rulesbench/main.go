package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/benbeisheim/clonechess-backend/internal/model"
	"github.com/benbeisheim/clonechess-backend/internal/obslog"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

func main() {
	var (
		rounds  int
		plies   int
		cpuProf bool
		memProf bool
		profDir string
	)
	flag.IntVar(&rounds, "n", 20, "Sweeps per measurement.")
	flag.IntVar(&plies, "plies", 0, "Deterministic plies to play before measuring.")
	flag.BoolVar(&cpuProf, "cpuprofile", false, "Write a CPU profile.")
	flag.BoolVar(&memProf, "memprofile", false, "Write a memory profile.")
	flag.StringVar(&profDir, "profdir", ".", "Profile output directory.")
	flag.Parse()

	log, err := obslog.Init(obslog.Config{Level: "info", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = obslog.Close() }()

	switch {
	case cpuProf:
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(profDir), profile.Quiet).Stop()
	case memProf:
		defer profile.Start(profile.MemProfile, profile.ProfilePath(profDir), profile.Quiet).Stop()
	}

	engine := model.NewEngine()
	played := playout(engine, plies)
	log.Info("position_ready",
		zap.Int("plies", played),
		zap.String("to_move", string(engine.Turn())),
		zap.String("state", string(engine.State())),
	)

	side := engine.Turn()
	var targets int
	start := time.Now()
	for i := 0; i < rounds; i++ {
		targets = 0
		for _, p := range engine.Pieces(side) {
			targets += len(engine.LegalTargets(p.ID))
		}
	}
	sweep := time.Since(start)

	var state model.GameState
	start = time.Now()
	for i := 0; i < rounds; i++ {
		state = engine.TerminalState(side)
	}
	terminal := time.Since(start)

	log.Info("rulesbench_done",
		zap.Int("rounds", rounds),
		zap.Int("legal_targets", targets),
		zap.Duration("sweep_avg", sweep/time.Duration(max(rounds, 1))),
		zap.String("terminal_state", string(state)),
		zap.Duration("terminal_avg", terminal/time.Duration(max(rounds, 1))),
	)
}

// playout plays up to n plies, picking a move by ply number so that runs are
// repeatable. It stops early when the side to move has nothing legal.
func playout(engine *model.Engine, n int) int {
	for ply := 0; ply < n; ply++ {
		if engine.State().IsTerminal() {
			return ply
		}
		type move struct {
			id model.PieceID
			to model.Square
		}
		var moves []move
		for _, p := range engine.Pieces(engine.Turn()) {
			for _, to := range engine.LegalTargets(p.ID) {
				moves = append(moves, move{p.ID, to})
			}
		}
		if len(moves) == 0 {
			return ply
		}
		m := moves[(ply*7919)%len(moves)]
		engine.AttemptMove(m.id, m.to)
	}
	return n
}
