package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestForRange(t *testing.T) {
	cfg := WithWorkers(4)

	var counter int64
	n := 1000

	ForRange(n, func(lo, hi int) {
		atomic.AddInt64(&counter, int64(hi-lo))
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForRange_CoversEveryIndexOnce(t *testing.T) {
	n := 1001
	hits := make([]int32, n)

	var mu sync.Mutex
	chunks := 0
	ForRange(n, func(lo, hi int) {
		mu.Lock()
		chunks++
		mu.Unlock()
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	}, WithWorkers(8))

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d visited %d times", i, h)
		}
	}
	if chunks < 2 {
		t.Errorf("Expected work to be split, got %d chunk(s)", chunks)
	}
}

func TestForRange_Sequential(t *testing.T) {
	calls := 0
	ForRange(500, func(lo, hi int) {
		calls++
		if lo != 0 || hi != 500 {
			t.Errorf("Expected single range [0,500), got [%d,%d)", lo, hi)
		}
	}, Sequential())

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestFor_SmallInputRunsInline(t *testing.T) {
	cfg := WithWorkers(8)

	calls := 0
	ForRange(cfg.MinChunkSize, func(_, _ int) {
		calls++
	}, cfg)

	if calls != 1 {
		t.Errorf("Expected 1 inline call, got %d", calls)
	}
}

func TestForRange_Empty(t *testing.T) {
	ForRange(0, func(_, _ int) {
		t.Error("f must not be called for n == 0")
	}, WithWorkers(0))
}

func TestWithWorkers_DefaultsToCPUCount(t *testing.T) {
	if got := WithWorkers(0).Workers; got < 1 {
		t.Errorf("Expected at least one worker, got %d", got)
	}
}

func BenchmarkForRange(b *testing.B) {
	n := 50000
	sum := func(lo, hi int) {
		var s int64
		for i := lo; i < hi; i++ {
			s += int64(i)
		}
		_ = s
	}

	b.Run("parallel", func(b *testing.B) {
		cfg := WithWorkers(0)
		for i := 0; i < b.N; i++ {
			ForRange(n, sum, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfg := Sequential()
		for i := 0; i < b.N; i++ {
			ForRange(n, sum, cfg)
		}
	})
}
