// Profiling:
// go build ./profile/query
// SHIRUSHI_PROFILE=cpu ./query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

package main

import (
	"log"

	"github.com/edwinsyarief/shirushi"
	"github.com/edwinsyarief/shirushi/internal/config"
	"github.com/pkg/profile"
)

type position struct {
	X, Y float64
}

type velocity struct {
	X, Y float64
}

type enemy struct{}

func main() {
	cfg, err := config.LoadHarness()
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	p := profile.Start(cfg.ProfileOptions()...)
	run(cfg.Iterations, cfg.Entities)
	p.Stop()
}

func run(iters, numEntities int) {
	w := shirushi.NewWorld(numEntities)
	cmds := shirushi.NewCommands(w)
	enemies := shirushi.NewMarking[enemy]()
	half := numEntities / 2
	enemies.MarkedBatch(cmds, shirushi.Bundles(make([]shirushi.Bundle2[position, velocity], half)...))
	cmds.SpawnBatch(shirushi.Bundles(make([]shirushi.Bundle2[position, velocity], numEntities-half)...))
	cmds.Apply()

	query := shirushi.NewFilter2[position, enemy](w)
	for range iters {
		query.Reset()
		for query.Next() {
			pos, _ := query.Get()
			pos.X++
			pos.Y++
		}
	}
}
