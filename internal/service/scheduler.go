package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler triggers periodic full sync runs. A tick that arrives while the
// previous run is still going is skipped, never queued.
type Scheduler struct {
	syncService *SyncService
	interval    time.Duration

	mu       sync.Mutex
	running  bool
	stop     chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a scheduler. An interval of zero disables it.
func NewScheduler(syncService *SyncService, interval time.Duration) *Scheduler {
	return &Scheduler{
		syncService: syncService,
		interval:    interval,
		stop:        make(chan struct{}),
	}
}

// Start launches the background loop. No-op when the interval is zero.
func (s *Scheduler) Start() {
	if s.interval <= 0 {
		log.Println("[Scheduler] Disabled (no interval configured)")
		return
	}

	go s.loop()
	log.Printf("[Scheduler] Running full sync every %v", s.interval)
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("[Scheduler] Previous run still in progress; skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if _, err := s.syncService.RunFull(ctx); err != nil {
		log.Printf("[Scheduler] Full run failed: %v", err)
	}
}

// Stop halts the background loop. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}
