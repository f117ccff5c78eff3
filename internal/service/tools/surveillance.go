package tools

import (
	"math/rand"
	"sync"
)

// CameraPicker hands out a random public camera stream from a configured
// list.
type CameraPicker struct {
	cameras []string
	mu      sync.Mutex
	rnd     *rand.Rand
}

func NewCameraPicker(cameras []string, seed int64) *CameraPicker {
	return &CameraPicker{
		cameras: cameras,
		rnd:     rand.New(rand.NewSource(seed)),
	}
}

func (c *CameraPicker) Pick() (string, bool) {
	if len(c.cameras) == 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cameras[c.rnd.Intn(len(c.cameras))], true
}
