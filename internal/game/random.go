package game

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	mrand "math/rand/v2"
)

// RandomSource yields uniform integers in [0, n).
type RandomSource interface {
	Intn(n int) (int, error)
}

// CryptoSource draws from crypto/rand. A nil Reader means rand.Reader.
type CryptoSource struct {
	Reader io.Reader
}

func NewCryptoSource() *CryptoSource {
	return &CryptoSource{Reader: rand.Reader}
}

func (s *CryptoSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("n must be positive")
	}
	r := s.Reader
	if r == nil {
		r = rand.Reader
	}
	v, err := rand.Int(r, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

const goldenRatio64 = 0x9e3779b97f4a7c15

// SeededSource is a reproducible PCG source for simulations and tests.
// It is not safe for concurrent use.
type SeededSource struct {
	rng *mrand.Rand
}

func NewSeededSource(seed int64) *SeededSource {
	u := uint64(seed)
	return &SeededSource{rng: mrand.New(mrand.NewPCG(mix(u), mix(u+goldenRatio64)))}
}

func (s *SeededSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("n must be positive")
	}
	return s.rng.IntN(n), nil
}

// splitmix64 finaliser
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
