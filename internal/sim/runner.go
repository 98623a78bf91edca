package sim

import (
	"log"
	"sync"
	"time"

	"stellarforge/internal/config"
)

// Runner drives a World in real time. It owns the tick goroutine; all
// outside access goes through EnqueueCommand (buffered into the next
// tick) or the lock-free snapshot pool. OnTick runs inside the tick with
// the world still locked, for metrics collection.
type Runner struct {
	mu    sync.Mutex
	world *World

	pool *SnapshotPool

	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  bool

	// OnTick receives the tick duration after every step. Optional.
	OnTick func(w *World, elapsed time.Duration)
}

// NewRunner wraps a world with a real-time driver.
func NewRunner(w *World, limits config.ResourceLimits) *Runner {
	return &Runner{
		world:    w,
		pool:     NewSnapshotPool(limits),
		stopChan: make(chan struct{}),
	}
}

// Start launches the tick loop. Safe to call once.
func (r *Runner) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	interval := time.Second / time.Duration(r.world.Cfg.TickRate)
	r.ticker = time.NewTicker(interval)
	r.mu.Unlock()

	log.Printf("sim: runner started at %d ticks/sec", r.world.Cfg.TickRate)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-r.stopChan:
				return
			case <-r.ticker.C:
				r.step()
			}
		}
	}()
}

func (r *Runner) step() {
	start := time.Now()

	r.mu.Lock()
	r.world.Step()
	snap := r.pool.AcquireWrite()
	r.world.FillSnapshot(snap)
	if r.OnTick != nil {
		r.OnTick(r.world, time.Since(start))
	}
	r.mu.Unlock()

	r.pool.PublishWrite()
}

// Stop halts the tick loop and waits for it to exit.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
		r.wg.Wait()
		r.mu.Lock()
		if r.ticker != nil {
			r.ticker.Stop()
		}
		r.running = false
		r.mu.Unlock()
		log.Println("sim: runner stopped")
	})
}

// EnqueueCommand buffers a wire command for the next tick. Commands
// without a tick stamp execute on the tick after arrival.
func (r *Runner) EnqueueCommand(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cmd.Tick == 0 {
		cmd.Tick = r.world.Tick + 1
	}
	r.world.EnqueueCommand(cmd)
}

// Snapshot returns the latest published world snapshot.
func (r *Runner) Snapshot() *WorldSnapshot {
	return r.pool.AcquireRead()
}

// Fingerprint returns the most recent periodic state hash and its tick.
func (r *Runner) Fingerprint() (uint32, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.LastFingerprint, r.world.Tick
}

// CurrentTick returns the simulation tick counter.
func (r *Runner) CurrentTick() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.Tick
}
