package ramjet

import (
	"testing"

	kitlog "github.com/go-kit/kit/log"
)

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

// emptyTank returns an empty tank of the provided capacity.
func emptyTank(name string, capacity float64) *Tank {
	t := NewTank(name, capacity)
	t.PipeOut(capacity)
	return t
}

func quietRamjet(t *testing.T, bp Blueprint, opts ...Option) *Ramjet {
	r, err := NewRamjet(bp, DefaultConstants(), append(opts, WithLogger(kitlog.NewNopLogger()))...)
	if err != nil {
		t.Fatalf("could not build %s: %s", bp.Name, err)
	}
	return r
}
