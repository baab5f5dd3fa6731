// Package twin holds the digital twin simulator controls.
package twin

import (
	"errors"
	"fmt"
	"sync"

	"industrial-ai-backend/internal/models"
)

// DefaultLoad is the operational load the simulator starts at
const DefaultLoad = 65

var ErrLoadOutOfRange = errors.New("load must be between 0 and 100")

// Update is a partial change to the simulator state
type Update struct {
	Simulating *bool `json:"simulating,omitempty"`
	Load       *int  `json:"load,omitempty"`
}

type Simulator struct {
	mu    sync.RWMutex
	state models.TwinState
}

func NewSimulator() *Simulator {
	return &Simulator{state: models.TwinState{Load: DefaultLoad}}
}

func (s *Simulator) State() models.TwinState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Apply validates u and applies it atomically
func (s *Simulator) Apply(u Update) (models.TwinState, error) {
	if u.Load != nil && (*u.Load < 0 || *u.Load > 100) {
		return s.State(), fmt.Errorf("%w: got %d", ErrLoadOutOfRange, *u.Load)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Simulating != nil {
		s.state.Simulating = *u.Simulating
	}
	if u.Load != nil {
		s.state.Load = *u.Load
	}
	return s.state, nil
}

// Reset restores the initial state
func (s *Simulator) Reset() models.TwinState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = models.TwinState{Load: DefaultLoad}
	return s.state
}
