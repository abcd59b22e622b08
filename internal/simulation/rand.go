package simulation

import (
	"math/rand"
	"time"
)

// streamStride spaces batch seeds far apart so neighbouring batches never share a stream.
const streamStride = 7919

// Source draws standard normal deviates.
type Source interface {
	NormFloat64() float64
}

// Streams hands out one independent Source per batch. A batch's stream depends only on
// its index, never on which worker runs it.
type Streams interface {
	Stream(batch int) Source
}

// SeededStreams derives every batch stream from a single seed.
type SeededStreams struct {
	seed int64
}

// NewStreams creates seeded streams. A zero seed picks a fresh time-based seed.
func NewStreams(seed int64) SeededStreams {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return SeededStreams{seed: seed}
}

// Seed returns the base seed the streams were built from.
func (s SeededStreams) Seed() int64 {
	return s.seed
}

// Stream returns the generator for a batch.
func (s SeededStreams) Stream(batch int) Source {
	return rand.New(rand.NewSource(s.seed + int64(batch)*streamStride))
}
