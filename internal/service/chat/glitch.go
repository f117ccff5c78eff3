package chat

import (
	"math/rand"
	"sync"
	"time"
)

// Glitch is the probabilistic short-circuit: occasionally a turn is answered
// with a canned fact instead of the completion pipeline, and no memory is
// touched.
type Glitch struct {
	probability float64
	lists       [][]string

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGlitch(probability float64, factLists map[string][]string) *Glitch {
	var lists [][]string
	for _, facts := range factLists {
		if len(facts) > 0 {
			lists = append(lists, facts)
		}
	}
	return &Glitch{
		probability: probability,
		lists:       lists,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *Glitch) Hit() bool {
	if g.probability <= 0 || len(g.lists) == 0 {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64() < g.probability
}

// Fact picks a random list, then a random fact from it.
func (g *Glitch) Fact() string {
	if len(g.lists) == 0 {
		return ""
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	list := g.lists[g.rnd.Intn(len(g.lists))]
	return list[g.rnd.Intn(len(list))]
}
