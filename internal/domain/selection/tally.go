package selection

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
)

// Picker chooses an index in [0, n).
type Picker interface {
	IntN(n int) int
}

type lockedPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (p *lockedPicker) IntN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

// NewSeededPicker returns a deterministic picker for a fixed seed.
func NewSeededPicker(seed uint64) Picker {
	return &lockedPicker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomPicker seeds a picker from crypto/rand.
func NewRandomPicker() (Picker, error) {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return &lockedPicker{rng: rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(b[:8]),
		binary.LittleEndian.Uint64(b[8:]),
	))}, nil
}

// TallyVotes pairs each book with its vote count, highest first. Books with equal
// counts keep their input order.
func TallyVotes(books []ClubBook, counts map[string]int) []Tally {
	tallies := make([]Tally, 0, len(books))
	for _, book := range books {
		tallies = append(tallies, Tally{ClubBook: book, Votes: counts[book.ID]})
	}
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].Votes > tallies[j].Votes
	})
	return tallies
}

// SelectWinner returns the book with the most votes. Ties are broken
// uniformly at random among the books sharing the maximum.
func SelectWinner(books []ClubBook, counts map[string]int, picker Picker) (ClubBook, bool) {
	if len(books) == 0 {
		return ClubBook{}, false
	}

	max := -1
	var top []ClubBook
	for _, book := range books {
		votes := counts[book.ID]
		switch {
		case votes > max:
			max = votes
			top = []ClubBook{book}
		case votes == max:
			top = append(top, book)
		}
	}

	if len(top) == 1 {
		return top[0], true
	}
	return top[picker.IntN(len(top))], true
}
