package optimistic

import (
	"context"
	"errors"
	"testing"
)

func appendTx(item string, commitErr error, seen *[]string, v *Value[[]string]) Tx[[]string] {
	return Tx[[]string]{
		Apply: func(s []string) []string {
			return append(append([]string(nil), s...), item)
		},
		Commit: func(context.Context) (func([]string) []string, error) {
			*seen = append(*seen, v.Get()...)
			return nil, commitErr
		},
	}
}

func TestDoAppliesBeforeCommit(t *testing.T) {
	v := NewValue([]string{"a"})
	var seen []string
	if err := Do(context.Background(), v, appendTx("b", nil, &seen, v)); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[1] != "b" {
		t.Fatalf("commit saw %v, want the applied state", seen)
	}
	if got := v.Get(); len(got) != 2 {
		t.Fatalf("state = %v", got)
	}
}

func TestDoRollsBackToSnapshot(t *testing.T) {
	v := NewValue([]string{"a"})
	var seen []string
	boom := errors.New("boom")
	err := Do(context.Background(), v, appendTx("b", boom, &seen, v))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if got := v.Get(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("state = %v, want rolled back", got)
	}
}

func TestDoRevertKeepsConcurrentChanges(t *testing.T) {
	v := NewValue(map[string]int{"a": 1})
	err := Do(context.Background(), v, Tx[map[string]int]{
		Apply: func(m map[string]int) map[string]int {
			out := map[string]int{}
			for k, n := range m {
				out[k] = n
			}
			out["b"] = 2
			return out
		},
		Commit: func(context.Context) (func(map[string]int) map[string]int, error) {
			v.Update(func(m map[string]int) map[string]int {
				m["c"] = 3
				return m
			})
			return nil, errors.New("offline")
		},
		Revert: func(m map[string]int) map[string]int {
			delete(m, "b")
			return m
		},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	got := v.Get()
	if _, ok := got["b"]; ok || got["c"] != 3 || got["a"] != 1 {
		t.Fatalf("state = %v", got)
	}
}

func TestDoReconciles(t *testing.T) {
	v := NewValue(0)
	err := Do(context.Background(), v, Tx[int]{
		Apply: func(n int) int { return n - 1 },
		Commit: func(context.Context) (func(int) int, error) {
			return func(int) int { return 42 }, nil
		},
	})
	if err != nil || v.Get() != 42 {
		t.Fatalf("state = %d, err = %v", v.Get(), err)
	}
}
