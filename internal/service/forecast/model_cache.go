package forecast

import (
	"fmt"
	"sync"

	"github.com/Domenick1991/farecast/internal/domain"
	"github.com/Domenick1991/farecast/internal/ml"
)

// ModelCache holds the trained model and in-flight-training flag per
// route+trip-type key. It is injected into the service so concurrent
// requests for different routes never contend on shared ambient state
// and tests get a fresh cache per case.
type ModelCache struct {
	mu     sync.Mutex
	states map[string]*modelState
}

type modelState struct {
	model      *ml.Model
	isTraining bool
}

func NewModelCache() *ModelCache {
	return &ModelCache{states: make(map[string]*modelState)}
}

func modelKey(origin, destination string, tripType domain.TripType) string {
	return fmt.Sprintf("%s:%s:%s", origin, destination, tripType)
}

// get returns the trained model for the key, plus whether a training
// run is currently in flight.
func (c *ModelCache) get(key string) (*ml.Model, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[key]
	if !ok {
		return nil, false
	}
	return state.model, state.isTraining
}

// beginTraining claims the training slot for the key. It returns false
// when another caller already holds it; that caller's result wins and
// the loser proceeds with no-model semantics instead of queuing.
func (c *ModelCache) beginTraining(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[key]
	if !ok {
		state = &modelState{}
		c.states[key] = state
	}
	if state.isTraining {
		return false
	}
	state.isTraining = true
	return true
}

// finishTraining publishes the training outcome. A nil model marks the
// route as "unavailable" until the next successful retrain.
func (c *ModelCache) finishTraining(key string, model *ml.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[key]
	if !ok {
		state = &modelState{}
		c.states[key] = state
	}
	state.model = model
	state.isTraining = false
}
