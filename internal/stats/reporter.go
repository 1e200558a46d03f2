package stats

import (
	"log"
	"sync"
	"time"

	"codeshare/backend/internal/session"
	"codeshare/backend/internal/ws"
)

// Reporter periodically logs a snapshot of live sessions, occupied rooms and
// open connections. It observes only; abandoned sessions are never collected.
type Reporter struct {
	hub      *ws.Hub
	registry *session.Registry
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
}

func New(hub *ws.Hub, registry *session.Registry, interval time.Duration) *Reporter {
	return &Reporter{
		hub:      hub,
		registry: registry,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (r *Reporter) Start() {
	r.wg.Add(1)
	go r.run()
	log.Printf("📊 Stats reporter started (interval: %v)", r.interval)
}

func (r *Reporter) Stop() {
	close(r.stop)
	r.wg.Wait()
	log.Println("📊 Stats reporter stopped")
}

func (r *Reporter) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.report()
		}
	}
}

func (r *Reporter) report() {
	log.Printf("Stats: %d sessions, %d active rooms, %d connected clients",
		r.registry.Len(), r.hub.RoomCount(), r.hub.ClientCount())
}
