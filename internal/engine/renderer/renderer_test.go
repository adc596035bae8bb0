package renderer

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
)

func TestDrainErrors(t *testing.T) {
	tests := []struct {
		name   string
		queued []uint32
		want   int
	}{
		{"no errors", nil, 0},
		{"one stale error", []uint32{gl.INVALID_ENUM}, 1},
		{"several stale errors", []uint32{gl.INVALID_ENUM, gl.INVALID_VALUE, gl.OUT_OF_MEMORY}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := append([]uint32(nil), tt.queued...)
			next := func() uint32 {
				if len(queue) == 0 {
					return gl.NO_ERROR
				}
				code := queue[0]
				queue = queue[1:]
				return code
			}

			if got := drainErrors(next); got != tt.want {
				t.Errorf("expected %d drained errors, got %d", tt.want, got)
			}
			if len(queue) != 0 {
				t.Errorf("expected queue to be empty, got %d left", len(queue))
			}
		})
	}
}

func TestDrainErrors_Bounded(t *testing.T) {
	calls := 0
	next := func() uint32 {
		calls++
		return gl.CONTEXT_LOST
	}

	if got := drainErrors(next); got != maxStaleErrors {
		t.Errorf("expected %d drained errors, got %d", maxStaleErrors, got)
	}
	if calls != maxStaleErrors {
		t.Errorf("expected %d calls, got %d", maxStaleErrors, calls)
	}
}
