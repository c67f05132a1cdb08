package lang

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestParseCached(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	first, err := ParseCached(t.Context(), "1 + 2 * x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := ParseCached(t.Context(), "1 + 2 * x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("identical source was parsed twice")
	}

	other, err := ParseCached(t.Context(), "1 + 2 * y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if Equal(first, other) {
		t.Error("different sources share a tree")
	}
}

func TestParseCached_Errors(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	for range 2 {
		if _, err := ParseCached(t.Context(), "(1 +"); !errors.Is(err, ErrUnexpectedToken) {
			t.Errorf("got error %v, want %v", err, ErrUnexpectedToken)
		}
	}
}

func TestParseCached_Concurrent(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	const workers = 16

	var (
		wg    sync.WaitGroup
		trees [workers]Expr
	)

	for i := range workers {
		wg.Go(func() {
			e, err := ParseCached(t.Context(), "gcd(12, 18) + 1")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			trees[i] = e
		})
	}

	wg.Wait()

	for i := 1; i < workers; i++ {
		if trees[i] != trees[0] {
			t.Errorf("worker %d got a different tree", i)
		}
	}
}

func TestClearCache(t *testing.T) {
	first, _ := ParseCached(t.Context(), "3!")

	ClearCache()

	second, _ := ParseCached(t.Context(), "3!")
	if first == second {
		t.Error("cache was not cleared")
	}

	if !Equal(first, second) {
		t.Errorf("got %v, want %v", second, first)
	}
}

func TestParseCached_Limit(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	limit := cacheLimit
	cacheLimit = 2

	t.Cleanup(func() { cacheLimit = limit })

	first, _ := ParseCached(t.Context(), "1 + 1")
	_, _ = ParseCached(t.Context(), "2 + 2")

	a, err := ParseCached(t.Context(), "3 + 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, _ := ParseCached(t.Context(), "3 + 3")
	if a == b {
		t.Error("source past the limit was cached")
	}

	if !Equal(a, b) {
		t.Errorf("got %v, want %v", b, a)
	}

	if again, _ := ParseCached(t.Context(), "1 + 1"); again != first {
		t.Error("source cached before the limit was parsed again")
	}

	if n := cacheSize.Load(); n != 2 {
		t.Errorf("got %d cached sources, want 2", n)
	}
}

func TestEvaluateStream_BypassesCache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	var src strings.Builder
	for i := range 100 {
		fmt.Fprintf(&src, "x%d = %d\n", i, i)
	}

	env := NewEnvironment()

	for res := range EvaluateStream(t.Context(), strings.NewReader(src.String()), env) {
		if res.Err != nil {
			t.Fatalf("line %d: %v", res.Line, res.Err)
		}
	}

	if n := cacheSize.Load(); n != 0 {
		t.Errorf("got %d cached sources after streaming, want 0", n)
	}

	if v, ok := env.Last("x99"); !ok || v.AsInt() != 99 {
		t.Errorf("got x99 = %v, want 99", v)
	}
}
