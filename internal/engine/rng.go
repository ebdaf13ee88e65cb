package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"math"
	"strconv"
)

// Stream generates a deterministic pseudo-random byte stream using
// HMAC-SHA256 keyed by a string seed. Identical seed plus identical
// call sequence reproduces identical draws on any host.
type Stream struct {
	seed         string
	currentRound uint64
	currentPos   int
	buffer       [32]byte
}

// NewStream creates a stream positioned at the start of the seed's sequence.
func NewStream(seed string) *Stream {
	return NewStreamAt(seed, 0)
}

// NewStreamAt creates a stream positioned at the given byte cursor,
// allowing a persisted stream to resume exactly where it left off.
func NewStreamAt(seed string, cursor uint64) *Stream {
	s := &Stream{
		seed:         seed,
		currentRound: cursor / 32,
		currentPos:   int(cursor % 32),
	}

	// Always generate the initial round
	s.generateRound()

	return s
}

// DeriveSeed composes a parent seed with a context tag so sub-streams
// (map layout, merchant offers, combat randomness) are independent yet
// individually reproducible. Same parent+tag always yields the same
// sub-stream.
func DeriveSeed(parent, tag string) string {
	return parent + "-" + tag
}

// Cursor returns the number of bytes consumed so far. Persist it alongside
// the seed to resume the stream with NewStreamAt.
func (s *Stream) Cursor() uint64 {
	return s.currentRound*32 + uint64(s.currentPos)
}

// next returns the next byte from the stream.
func (s *Stream) next() byte {
	if s.currentPos >= 32 {
		s.currentRound++
		s.currentPos = 0
		s.generateRound()
	}

	b := s.buffer[s.currentPos]
	s.currentPos++
	return b
}

// Float generates the next float in [0, 1) using exactly 4 bytes.
func (s *Stream) Float() float64 {
	b0 := s.next()
	b1 := s.next()
	b2 := s.next()
	b3 := s.next()

	return bytesToFloat([4]byte{b0, b1, b2, b3})
}

// IntN returns a uniform integer in [0, n). Non-positive n returns 0.
func (s *Stream) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	idx := int(math.Floor(s.Float() * float64(n)))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// WeightedIndex picks an index with probability proportional to its weight.
// Non-positive weights are treated as zero; if every weight is zero the
// first index is returned.
func (s *Stream) WeightedIndex(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return 0
	}

	roll := s.IntN(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if roll < w {
			return i
		}
		roll -= w
	}
	return len(weights) - 1
}

// Shuffle performs a Fisher-Yates shuffle over n elements, consuming one
// draw per swap so the permutation is a pure function of the stream state.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.IntN(i + 1)
		swap(i, j)
	}
}

func (s *Stream) generateRound() {
	h := hmac.New(sha256.New, []byte(s.seed))
	h.Write([]byte(strconv.FormatUint(s.currentRound, 10)))
	copy(s.buffer[:], h.Sum(nil))
}

// bytesToFloat converts exactly 4 bytes to a float64 in [0, 1).
func bytesToFloat(bytes [4]byte) float64 {
	result := 0.0
	for i, b := range bytes {
		divider := math.Pow(256, float64(i+1))
		result += float64(b) / divider
	}
	return result
}
