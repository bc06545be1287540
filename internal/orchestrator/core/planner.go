package core

import "fmt"

// Plan splits r into consecutive batches of at most batchSize units. Batch i
// starts at r.From + i*batchSize; the last batch is truncated at r.To. A range
// that would need more than maxBatches batches is rejected; maxBatches < 1
// disables the ceiling.
func Plan(r Range, batchSize, maxBatches int) ([]Range, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: batch size must be >= 1, got %d", ErrInvalidRange, batchSize)
	}
	if r.To < r.From {
		return nil, fmt.Errorf("%w: to (%d) must be >= from (%d)", ErrInvalidRange, r.To, r.From)
	}

	// Offsets from r.From are computed in uint64: the span of any valid range
	// fits there even when To-From overflows int64.
	size := uint64(batchSize)
	last := uint64(r.To) - uint64(r.From)
	lastBatch := last / size
	if maxBatches >= 1 && lastBatch >= uint64(maxBatches) {
		return nil, fmt.Errorf("%w: %s needs more than %d batches of %d",
			ErrInvalidRange, r, maxBatches, batchSize)
	}

	batches := make([]Range, 0, min(lastBatch+1, 1024))
	for i := uint64(0); ; i++ {
		offset := i * size
		start := int64(uint64(r.From) + offset)
		end := r.To
		if last-offset >= size {
			end = int64(uint64(start) + size - 1)
		}
		batches = append(batches, Range{From: start, To: end})
		if i == lastBatch {
			break
		}
	}
	return batches, nil
}
