package inventory

import (
	"sync"

	"github.com/ipsfa/inventario-client/internal/resource"
)

// opState tracks loading and the last error for operations outside the CRUD stores.
type opState struct {
	mu       sync.Mutex
	inflight int
	err      string

	// onBegin runs after every begin.
	onBegin func()
}

func (s *opState) begin() {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.mu.Unlock()

	if s.onBegin != nil {
		s.onBegin()
	}
}

func (s *opState) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = ""
}

func (s *opState) end() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight--
}

func (s *opState) fail(msg string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = msg

	return &resource.Error{Message: msg, Err: err}
}

// reject records err, raised before any request was sent, and returns it unchanged.
func (s *opState) reject(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err.Error()

	return err
}

func (s *opState) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inflight > 0
}

func (s *opState) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}
