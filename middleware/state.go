package middleware

import "sync"

// State is the per-request session view handed to handlers. Reads and writes
// go through the mutex so a handler may share it across goroutines; mutations
// mark the state dirty and are committed when the response starts.
type State struct {
	mu      sync.Mutex
	id      string
	values  map[string]any
	dirty   bool
	cleared bool
	fresh   bool
}

func newState(id string, values map[string]any, fresh bool) *State {
	if values == nil {
		values = map[string]any{}
	}
	return &State{
		id:     id,
		values: values,
		fresh:  fresh,
	}
}

// ID returns the session ID, or "" for stateless cookie sessions.
func (s *State) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Fresh reports whether this request started without a usable session.
func (s *State) Fresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fresh
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *State) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the string value for key, or "" when absent or not a string.
func (s *State) GetString(key string) string {
	v, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// GetInt returns the integer value for key. Deserialized payloads surface
// numbers as int64/uint64 (CBOR) or float64 (JSON); all of those convert.
func (s *State) GetInt(key string) int {
	v, ok := s.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Set describes the set operation and its observable behavior.
//
// Set may return an error when input validation, dependency calls, or security checks fail.
// Set does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *State) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.dirty = true
	s.cleared = false
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *State) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// Clear empties the session and marks it for destruction at commit time.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]any{}
	s.dirty = true
	s.cleared = true
}

// Values returns a shallow copy of the session values.
func (s *State) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *State) snapshot() (values map[string]any, dirty, cleared bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values = make(map[string]any, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	return values, s.dirty, s.cleared
}
