package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/olivierh59500/particle-rules/internal/ebitenhost"
	"github.com/olivierh59500/particle-rules/internal/termhost"
	"github.com/olivierh59500/particle-rules/scene"
)

func main() {
	var (
		name    = flag.String("scene", "avoid", "built-in scene: "+strings.Join(scene.Names(), ", "))
		config  = flag.String("config", "", "scene file (JSON), overrides -scene")
		host    = flag.String("host", "window", "where to run: window or term")
		width   = flag.Int("width", 800, "window width")
		height  = flag.Int("height", 800, "window height")
		tps     = flag.Int("tps", 60, "updates per second")
		seed    = flag.Int64("seed", 0, "random seed, 0 picks one from the clock")
		workers = flag.Int("workers", 0, "step workers, 0 uses GOMAXPROCS")
		save    = flag.String("save", "particles.json", "state file for the S and L keys")
		list    = flag.Bool("list", false, "list built-in scenes and exit")
	)
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("particles: ")

	if *list {
		for _, n := range scene.Names() {
			fmt.Println(n)
		}
		return
	}

	cfg, err := sceneConfig(*name, *config)
	if err != nil {
		log.Fatal(err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	} else if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	opts := scene.Options{Workers: *workers}
	build := func() (scene.Scene, error) { return scene.Build(cfg, opts) }
	s, err := build()
	if err != nil {
		log.Fatal(err)
	}

	switch *host {
	case "window":
		err = ebitenhost.Run(s, ebitenhost.Options{
			Title:    "particles: " + cfg.Name,
			Width:    *width,
			Height:   *height,
			TPS:      *tps,
			Workers:  *workers,
			SavePath: *save,
			Rebuild:  build,
		})
	case "term":
		err = runTerm(s, *tps)
	default:
		log.Fatalf("unknown host %q", *host)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runTerm(s scene.Scene, tps int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return termhost.Run(ctx, s, termhost.Options{TPS: tps})
}

func sceneConfig(name, path string) (scene.Config, error) {
	if path != "" {
		return scene.Load(path)
	}
	return scene.Builtin(name)
}
