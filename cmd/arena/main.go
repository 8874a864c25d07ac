package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/herohde/arena/pkg/game"
	"github.com/herohde/arena/pkg/tournament"
	"github.com/herohde/arena/pkg/uci"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

var (
	config   = flag.String("config", "", "Tournament configuration file (TOML). Overrides the other options")
	rounds   = flag.Int("rounds", 2, "Number of rounds to play")
	movetime = flag.Duration("movetime", 100*time.Millisecond, "Fixed time per move")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `usage: arena [options] <engine1> <engine2>

ARENA %v is a headless UCI tournament harness. It plays two chess engine
executables against each other over a number of rounds with alternating
colors and prints the aggregate result.
Options:
`, version)
		flag.PrintDefaults()
	}
}

// Config mirrors the command line for file-based tournaments.
type Config struct {
	Rounds     int            `toml:"rounds"`
	MoveTimeMS int            `toml:"movetime-ms"`
	Engines    []EngineConfig `toml:"engines"`
}

// EngineConfig declares a participating engine.
type EngineConfig struct {
	Name string   `toml:"name"`
	Path string   `toml:"path"`
	Args []string `toml:"args"`
}

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg := Config{Rounds: *rounds, MoveTimeMS: int(movetime.Milliseconds())}
	if *config != "" {
		if _, err := toml.DecodeFile(*config, &cfg); err != nil {
			logw.Exitf(ctx, "Invalid config %v: %v", *config, err)
		}
	}
	if flag.NArg() == 2 {
		cfg.Engines = []EngineConfig{{Path: flag.Arg(0)}, {Path: flag.Arg(1)}}
	}
	if len(cfg.Engines) != 2 {
		flag.Usage()
		logw.Exitf(ctx, "Expected exactly 2 engines")
	}

	e1, err := uci.NewDescriptor(cfg.Engines[0].Path, cfg.Engines[0].Name, cfg.Engines[0].Args...)
	if err != nil {
		logw.Exitf(ctx, "Engine 1: %v", err)
	}
	e2, err := uci.NewDescriptor(cfg.Engines[1].Path, cfg.Engines[1].Name, cfg.Engines[1].Args...)
	if err != nil {
		logw.Exitf(ctx, "Engine 2: %v", err)
	}
	if e1.Name == e2.Name {
		e2.Name += " (2)"
	}

	result := tournament.Run(ctx, cfg.Rounds, e1, e2, game.MoveTime(time.Duration(cfg.MoveTimeMS)*time.Millisecond))

	fmt.Println(result)
	for i, res := range result.Games {
		fmt.Printf("  round %v: %v\n", i+1, res)
	}
}
