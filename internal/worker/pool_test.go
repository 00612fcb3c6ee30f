package worker_test

import (
	"testing"

	"github.com/helix-ai/backend/internal/worker"
)

func TestCollect_ReturnsEveryResult(t *testing.T) {
	tasks := map[string]worker.Task[int]{
		"a": func() int { return 1 },
		"b": func() int { return 2 },
		"c": func() int { return 3 },
	}

	out := worker.Collect(2, tasks)

	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
	if out["a"] != 1 || out["b"] != 2 || out["c"] != 3 {
		t.Errorf("unexpected results %v", out)
	}
}

func TestCollect_EmptyInput(t *testing.T) {
	out := worker.Collect[int](4, nil)
	if len(out) != 0 {
		t.Errorf("expected empty result, got %v", out)
	}
}

func TestPool_CloseEndsResultsRange(t *testing.T) {
	pool := worker.NewPool[string](3, 8)
	for i := 0; i < 8; i++ {
		pool.Submit("k", func() string { return "done" })
	}
	pool.Close()

	count := 0
	for range pool.Results() {
		count++
	}
	if count != 8 {
		t.Errorf("expected 8 results, got %d", count)
	}
}
