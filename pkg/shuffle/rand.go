package shuffle

import (
	"crypto/rand"
	"encoding/binary"
	"math/bits"
	randv2 "math/rand/v2"
)

// Stream is the fixed second PCG state word paired with every seed.
const Stream uint64 = 0x5851f42d4c957f2d

// Rand is the seeded index generator used by Buffer.
type Rand struct {
	src *randv2.PCG
}

// NewRand returns a generator seeded with seed.
func NewRand(seed uint64) *Rand {
	return &Rand{src: randv2.NewPCG(seed, Stream)}
}

// EntropySeed returns a seed read from the operating system's entropy source.
func EntropySeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("shuffle: reading entropy: " + err.Error())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Uint64 returns the next raw generator output.
func (r *Rand) Uint64() uint64 {
	return r.src.Uint64()
}

// Intn returns a uniform index in [0, n). n must be positive.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic("shuffle: invalid argument to Intn")
	}
	bound := uint64(n)
	hi, lo := bits.Mul64(r.Uint64(), bound)
	if lo < bound {
		threshold := -bound % bound
		for lo < threshold {
			hi, lo = bits.Mul64(r.Uint64(), bound)
		}
	}
	return int(hi)
}
