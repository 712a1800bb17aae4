// Package pipeline drives a full processing run: distributing pending
// issues across workers, processing each issue end to end, and durably
// checkpointing completed work.
package pipeline

// Chunk partitions issue identifiers into at most workers contiguous
// chunks, preserving order. Every chunk except possibly the last has
// ceil(len/workers) elements, so a worker's chunk is a stable slice of
// the pending list. Pure.
func Chunk(ids []string, workers int) [][]string {
	if len(ids) == 0 || workers <= 0 {
		return nil
	}

	size := (len(ids) + workers - 1) / workers
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
