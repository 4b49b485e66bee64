// Profiling:
// go build ./profile/spawn
// SHIRUSHI_PROFILE=alloc ./spawn
// go tool pprof -http=":8000" -nodefraction=0.001 ./spawn mem.pprof

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

type spawned struct{}

func main() {
	cfg, err := config.LoadHarness()
	if err != nil {
		log.Fatalf("spawn: %v", err)
	}
	p := profile.Start(cfg.ProfileOptions()...)
	run(cfg.Iterations, cfg.Entities)
	p.Stop()
}

func run(iters, numEntities int) {
	marking := shirushi.NewMarking[spawned]()
	payloads := make([]shirushi.Bundle2[position, velocity], numEntities)
	for i := range payloads {
		payloads[i] = shirushi.Of2(position{X: float64(i)}, velocity{X: 1})
	}
	w := shirushi.NewWorld(numEntities)
	cmds := shirushi.NewCommands(w)
	for range iters {
		marking.MarkedBatch(cmds, shirushi.Bundles(payloads...))
		cmds.Apply()

		filter := marking.Filter(w)
		despawn := filter.Entities()
		for _, e := range despawn {
			cmds.Entity(e).Despawn()
		}
		cmds.Apply()
	}
}
