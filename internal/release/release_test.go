package release

import (
	"fmt"
	"testing"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("s%02d", i)
	}
	return out
}

func TestBatchesInOrder(t *testing.T) {
	c := NewController[string](DefaultConfig())
	all := names(25)
	c.Add(all...)

	var released []string
	batches := 0
	for elapsed := 0.0; elapsed < 1.6; elapsed += 0.1 {
		batch := c.Update(0.1)
		if len(batch) == 0 {
			continue
		}
		if len(batch) > 10 {
			t.Fatalf("batch of %d exceeds batch size", len(batch))
		}
		batches++
		released = append(released, batch...)
	}

	if batches > 3 {
		t.Errorf("released %d batches, want at most 3", batches)
	}
	for i, id := range released {
		if id != all[i] {
			t.Fatalf("release order broken at %d: %s, want %s", i, id, all[i])
		}
	}
	st := c.Statistics()
	if st.TotalReleased+st.Pending != 25 {
		t.Errorf("released %d + pending %d != 25", st.TotalReleased, st.Pending)
	}
}

func TestUpdateExactInterval(t *testing.T) {
	c := NewController[string](DefaultConfig())
	c.Add(names(25)...)

	sizes := []int{}
	for i := 0; i < 4; i++ {
		sizes = append(sizes, len(c.Update(0.5)))
	}
	want := []int{10, 10, 5, 0}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("batch sizes = %v, want %v", sizes, want)
		}
	}
	st := c.Statistics()
	if st.TotalBatches != 3 || st.AverageBatchSize != 25.0/3 {
		t.Errorf("stats = %+v", st)
	}
}

func TestIdleTimeDoesNotAccumulate(t *testing.T) {
	c := NewController[string](DefaultConfig())
	for i := 0; i < 10; i++ {
		c.Update(1)
	}
	c.Add("late")
	if got := c.Update(0.1); len(got) != 0 {
		t.Errorf("time with nothing pending must not count, released %v", got)
	}
}

func TestDisabledReleasesEverything(t *testing.T) {
	c := NewController[string](Config{BatchSize: 10, Interval: 0.5, Enabled: false})
	c.Add(names(25)...)
	if got := c.Update(0); len(got) != 25 {
		t.Errorf("disabled controller released %d, want 25", len(got))
	}
	if c.EstimatedWait() != 0 {
		t.Error("nothing should be pending")
	}
}

func TestPendingAndClear(t *testing.T) {
	c := NewController[string](DefaultConfig())
	c.Add("a", "b", "a")
	if c.PendingCount() != 2 {
		t.Errorf("duplicate add counted, pending = %d", c.PendingCount())
	}
	if !c.IsPending("a") || c.IsPending("z") {
		t.Error("IsPending mismatch")
	}
	if got := c.EstimatedWait(); got != 0.5 {
		t.Errorf("estimated wait = %v, want 0.5", got)
	}

	all := c.Clear()
	if len(all) != 2 || all[0] != "a" || c.IsPending("a") {
		t.Errorf("clear returned %v", all)
	}
	if st := c.Statistics(); st.TotalReleased != 2 || st.TotalBatches != 0 || st.Pending != 0 {
		t.Errorf("stats after clear = %+v", st)
	}
	c.Reset()
	if c.Statistics() != (Stats{}) {
		t.Errorf("reset stats = %+v", c.Statistics())
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if err := (Config{BatchSize: 0, Interval: 1}).Validate(); err == nil {
		t.Error("zero batch size should fail")
	}
	if err := (Config{BatchSize: 1, Interval: -1}).Validate(); err == nil {
		t.Error("negative interval should fail")
	}
}
