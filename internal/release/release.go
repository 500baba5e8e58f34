package release

import "fmt"

const (
	DefaultBatchSize = 10
	DefaultInterval  = 0.5
)

type Config struct {
	BatchSize int     `mapstructure:"batch_size"`
	Interval  float64 `mapstructure:"interval"`
	Enabled   bool    `mapstructure:"enabled"`
}

func DefaultConfig() Config {
	return Config{BatchSize: DefaultBatchSize, Interval: DefaultInterval, Enabled: true}
}

func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("release batch size must be positive, got %d", c.BatchSize)
	}
	if c.Interval < 0 {
		return fmt.Errorf("release interval must not be negative, got %v", c.Interval)
	}
	return nil
}

type Stats struct {
	TotalReleased    int
	TotalBatches     int
	Pending          int
	AverageBatchSize float64
	EstimatedWait    float64
}

// Controller holds items back and lets them go in fixed-size batches, one
// batch per interval, in the order they were added.
type Controller[T comparable] struct {
	cfg     Config
	pending []T
	members map[T]struct{}
	elapsed float64

	released int
	batches  int
}

func NewController[T comparable](cfg Config) *Controller[T] {
	return &Controller[T]{cfg: cfg, members: make(map[T]struct{})}
}

func (c *Controller[T]) Config() Config {
	return c.cfg
}

// Add appends items to the pending sequence. Items already pending are skipped.
func (c *Controller[T]) Add(items ...T) {
	for _, item := range items {
		if _, ok := c.members[item]; ok {
			continue
		}
		c.members[item] = struct{}{}
		c.pending = append(c.pending, item)
	}
}

// Update advances the controller by dt minutes and returns the items released.
func (c *Controller[T]) Update(dt float64) []T {
	if len(c.pending) == 0 {
		return nil
	}
	if !c.cfg.Enabled {
		return c.take(len(c.pending))
	}

	c.elapsed += dt
	if c.elapsed < c.cfg.Interval {
		return nil
	}
	c.elapsed = 0
	c.batches++
	return c.take(c.cfg.BatchSize)
}

func (c *Controller[T]) take(n int) []T {
	if n > len(c.pending) {
		n = len(c.pending)
	}
	batch := make([]T, n)
	copy(batch, c.pending[:n])
	c.pending = c.pending[n:]
	for _, item := range batch {
		delete(c.members, item)
	}
	c.released += n
	return batch
}

func (c *Controller[T]) IsPending(item T) bool {
	_, ok := c.members[item]
	return ok
}

func (c *Controller[T]) PendingCount() int {
	return len(c.pending)
}

// EstimatedWait is the time until the last pending item is released.
func (c *Controller[T]) EstimatedWait() float64 {
	if len(c.pending) == 0 || !c.cfg.Enabled {
		return 0
	}
	batches := (len(c.pending) + c.cfg.BatchSize - 1) / c.cfg.BatchSize
	return float64(batches)*c.cfg.Interval - c.elapsed
}

// Clear releases everything at once, bypassing the batch schedule. Cleared
// items count as released but not as a batch.
func (c *Controller[T]) Clear() []T {
	all := c.pending
	c.released += len(all)
	c.pending = nil
	c.members = make(map[T]struct{})
	c.elapsed = 0
	return all
}

// Reset drops pending items and statistics.
func (c *Controller[T]) Reset() {
	c.Clear()
	c.released = 0
	c.batches = 0
}

func (c *Controller[T]) Statistics() Stats {
	st := Stats{
		TotalReleased: c.released,
		TotalBatches:  c.batches,
		Pending:       len(c.pending),
		EstimatedWait: c.EstimatedWait(),
	}
	if c.batches > 0 {
		st.AverageBatchSize = float64(c.released) / float64(c.batches)
	}
	return st
}
