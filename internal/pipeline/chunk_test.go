package pipeline

import (
	"fmt"
	"testing"
)

func TestChunk(t *testing.T) {
	ids := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("issue-%02d", i)
		}
		return out
	}

	t.Run("ten issues over three workers", func(t *testing.T) {
		chunks := Chunk(ids(10), 3)
		if len(chunks) != 3 {
			t.Fatalf("expected 3 chunks, got %d", len(chunks))
		}
		sizes := []int{len(chunks[0]), len(chunks[1]), len(chunks[2])}
		if sizes[0] != 4 || sizes[1] != 4 || sizes[2] != 2 {
			t.Errorf("expected sizes [4 4 2], got %v", sizes)
		}
	})

	t.Run("order is preserved across chunks", func(t *testing.T) {
		in := ids(7)
		var flat []string
		for _, chunk := range Chunk(in, 3) {
			flat = append(flat, chunk...)
		}
		for i := range in {
			if flat[i] != in[i] {
				t.Fatalf("order broken at %d: %s != %s", i, flat[i], in[i])
			}
		}
	})

	t.Run("fewer issues than workers", func(t *testing.T) {
		chunks := Chunk(ids(2), 5)
		if len(chunks) != 2 {
			t.Errorf("expected 2 single-issue chunks, got %d", len(chunks))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := Chunk(nil, 3); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("zero workers", func(t *testing.T) {
		if got := Chunk(ids(3), 0); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}
