// Package detrand derives reproducible pseudo-random streams from string keys.
//
// A key is hashed with FNV-1a (32 bit) and the hash seeds a Mersenne Twister
// (MT19937) through the mt19937ar init_by_array routine with a one-word key.
// Bounded integers use bit-length rejection sampling and shuffles walk down
// from the last index, so a stream derived here reproduces survey files that
// were generated before this tool existed.
//
// There is no package-level generator. Every call to FromKey returns an
// independent stream whose whole output is a function of the key.
package detrand

import (
	"fmt"
	"hash/fnv"
	"math/bits"
)

// Hash returns the FNV-1a 32-bit hash of the UTF-8 bytes of key.
func Hash(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}

const (
	mtN       = 624
	mtM       = 397
	matrixA   = 0x9908b0df
	upperMask = 0x80000000
	lowerMask = 0x7fffffff

	// arraySeedBase is the scalar seed applied before init_by_array mixing.
	arraySeedBase = 19650218
)

// Stream is a single MT19937 sequence. It is not safe for concurrent use.
type Stream struct {
	mt  [mtN]uint32
	mti int
}

// FromKey returns a stream seeded with Hash(key).
func FromKey(key string) *Stream {
	return FromSeed(Hash(key))
}

// FromSeed returns a stream seeded with a 32-bit integer seed.
func FromSeed(seed uint32) *Stream {
	s := &Stream{}
	s.seedArray([]uint32{seed})
	return s
}

func (s *Stream) seedScalar(seed uint32) {
	s.mt[0] = seed
	for i := 1; i < mtN; i++ {
		s.mt[i] = 1812433253*(s.mt[i-1]^(s.mt[i-1]>>30)) + uint32(i)
	}
	s.mti = mtN
}

func (s *Stream) seedArray(key []uint32) {
	s.seedScalar(arraySeedBase)

	i, j := 1, 0
	k := mtN
	if len(key) > k {
		k = len(key)
	}
	for ; k > 0; k-- {
		s.mt[i] = (s.mt[i] ^ ((s.mt[i-1] ^ (s.mt[i-1] >> 30)) * 1664525)) + key[j] + uint32(j)
		i++
		j++
		if i >= mtN {
			s.mt[0] = s.mt[mtN-1]
			i = 1
		}
		if j >= len(key) {
			j = 0
		}
	}
	for k = mtN - 1; k > 0; k-- {
		s.mt[i] = (s.mt[i] ^ ((s.mt[i-1] ^ (s.mt[i-1] >> 30)) * 1566083941)) - uint32(i)
		i++
		if i >= mtN {
			s.mt[0] = s.mt[mtN-1]
			i = 1
		}
	}
	s.mt[0] = 0x80000000
}

func mag01(y uint32) uint32 {
	if y&1 == 0 {
		return 0
	}
	return matrixA
}

func (s *Stream) generate() {
	kk := 0
	for ; kk < mtN-mtM; kk++ {
		y := (s.mt[kk] & upperMask) | (s.mt[kk+1] & lowerMask)
		s.mt[kk] = s.mt[kk+mtM] ^ (y >> 1) ^ mag01(y)
	}
	for ; kk < mtN-1; kk++ {
		y := (s.mt[kk] & upperMask) | (s.mt[kk+1] & lowerMask)
		s.mt[kk] = s.mt[kk+mtM-mtN] ^ (y >> 1) ^ mag01(y)
	}
	y := (s.mt[mtN-1] & upperMask) | (s.mt[0] & lowerMask)
	s.mt[mtN-1] = s.mt[mtM-1] ^ (y >> 1) ^ mag01(y)
	s.mti = 0
}

// Uint32 returns the next tempered 32-bit output.
func (s *Stream) Uint32() uint32 {
	if s.mti >= mtN {
		s.generate()
	}
	y := s.mt[s.mti]
	s.mti++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

// Bits returns the top k bits of the next output, 1 <= k <= 32.
func (s *Stream) Bits(k int) uint32 {
	if k <= 0 || k > 32 {
		panic(fmt.Sprintf("detrand: Bits(%d) out of range", k))
	}
	return s.Uint32() >> (32 - k)
}

// Intn returns a uniform integer in [0, n) by rejection sampling over
// bit_length(n) bits. Each rejected draw consumes one output.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("detrand: Intn(%d) requires n > 0", n))
	}
	k := bits.Len64(uint64(n))
	if k > 32 {
		panic(fmt.Sprintf("detrand: Intn(%d) exceeds 32-bit range", n))
	}
	r := int(s.Bits(k))
	for r >= n {
		r = int(s.Bits(k))
	}
	return r
}

// Float64 returns a 53-bit float in [0, 1) built from two outputs.
func (s *Stream) Float64() float64 {
	a := s.Uint32() >> 5
	b := s.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) * (1.0 / 9007199254740992.0)
}

// Shuffle permutes n elements in place with Fisher-Yates, walking from the
// last index down to 1 and drawing j = Intn(i+1) at each step.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		swap(i, j)
	}
}
