package services

import (
	"context"
	"sort"
	"sync"

	"github.com/lorrc/ticketing-system/internal/core/ports"
	"github.com/lorrc/ticketing-system/internal/infrastructure/logging"
)

// runSet tracks the live actor runs of one kind, grouped by actor ID.
type runSet struct {
	mu   sync.Mutex
	runs map[string]map[string]*Actor
	wg   sync.WaitGroup
}

func newRunSet() *runSet {
	return &runSet{runs: make(map[string]map[string]*Actor)}
}

// launch starts actor in the background and forgets it once it finishes.
// The run outlives the request that started it, so only ctx values are kept.
func (r *runSet) launch(ctx context.Context, actor *Actor) {
	info := actor.Info()

	r.mu.Lock()
	byActor, ok := r.runs[info.ActorID]
	if !ok {
		byActor = make(map[string]*Actor)
		r.runs[info.ActorID] = byActor
	}
	byActor[info.ID] = actor
	r.mu.Unlock()

	runCtx := logging.WithRunID(logging.WithActorID(context.WithoutCancel(ctx), info.ActorID), info.ID)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.forget(info.ActorID, info.ID)
		actor.Run(runCtx)
	}()
}

func (r *runSet) forget(actorID, runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byActor := r.runs[actorID]
	delete(byActor, runID)
	if len(byActor) == 0 {
		delete(r.runs, actorID)
	}
}

// stop stops every run of actorID and returns how many were signalled.
func (r *runSet) stop(actorID string) int {
	r.mu.Lock()
	actors := make([]*Actor, 0, len(r.runs[actorID]))
	for _, a := range r.runs[actorID] {
		actors = append(actors, a)
	}
	r.mu.Unlock()

	for _, a := range actors {
		a.Stop()
	}
	return len(actors)
}

func (r *runSet) list(actorID string) []ports.RunInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ports.RunInfo, 0, len(r.runs[actorID]))
	for _, a := range r.runs[actorID] {
		out = append(out, a.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *runSet) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, byActor := range r.runs {
		n += len(byActor)
	}
	return n
}

// shutdown stops every run and waits for all of them to return.
func (r *runSet) shutdown() {
	r.mu.Lock()
	var actors []*Actor
	for _, byActor := range r.runs {
		for _, a := range byActor {
			actors = append(actors, a)
		}
	}
	r.mu.Unlock()

	for _, a := range actors {
		a.Stop()
	}
	r.wg.Wait()
}
