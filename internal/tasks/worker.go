package tasks

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/GoUserGroups/GoUserGroups/internal/events"
)

// Pool consumes the inbound event queue with a fixed number of workers, each
// running the orchestrator's impact analysis per event. Retry policy belongs
// to the event producer; a failed event is logged and dropped.
type Pool struct {
	bus          *events.Bus
	orchestrator *Orchestrator
	size         int
	wg           sync.WaitGroup
}

// NewPool creates a worker pool of the given size over the bus.
func NewPool(bus *events.Bus, orchestrator *Orchestrator, size int) *Pool {
	if size < 1 {
		size = 1
	}

	return &Pool{bus: bus, orchestrator: orchestrator, size: size}
}

// Start launches the workers. They run until the bus is closed.
func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)

		go p.run(i)
	}

	log.Info().Int("workers", p.size).Msg("event worker pool started")
}

// Stop closes the bus and waits for in-flight events to finish.
func (p *Pool) Stop() {
	p.bus.Close()
	p.wg.Wait()
	log.Info().Msg("event worker pool stopped")
}

func (p *Pool) run(worker int) {
	defer p.wg.Done()

	for event := range p.bus.Events() {
		if err := p.orchestrator.HandleEvent(event); err != nil {
			log.Error().
				Err(err).
				Int("worker", worker).
				Str("event_id", event.ID.String()).
				Str("event_type", event.Type).
				Msg("failed to process event")
		}
	}
}
