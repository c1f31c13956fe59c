// Package shuffle reorders a record stream with bounded memory.
//
// Buffer implements a streaming pool-swap shuffle. The first call fills a pool
// with up to capacity records in arrival order. Every later call pulls one
// more record, swaps it into a uniformly chosen slot and returns the record
// that occupied the slot. Once the source is exhausted the pool is drained by
// removing uniformly chosen slots until it is empty.
//
// The order is a pure function of the seed and the input sequence. The
// generator is PCG-DXSM (math/rand/v2.PCG) with state (seed, Stream), and
// slot indexes are drawn from its raw 64-bit output with Lemire's
// multiply-shift method (see Rand.Intn). Neither depends on the platform.
//
// This is not reservoir sampling and the output is not a uniform random
// permutation of the input.
package shuffle
