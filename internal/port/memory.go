package port

import "sync"

// Memory is an in-process Port. It backs dry runs and tests, and keeps
// enough history to check the acquire/release pairing and the pulse train.
type Memory struct {
	// FailAcquire, if set, is returned (wrapped) by Acquire.
	FailAcquire error

	mu       sync.Mutex
	held     bool
	acquires int
	releases int
	level    byte
	writes   []byte
}

// NewMemory returns an idle in-memory port.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) String() string {
	return "memory"
}

func (m *Memory) Acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAcquire != nil {
		return &PrivilegeError{Port: m.String(), Err: m.FailAcquire}
	}
	m.held = true
	m.acquires++
	return nil
}

func (m *Memory) WriteByte(v byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.held {
		return ErrNotAcquired
	}
	m.level = v
	m.writes = append(m.writes, v)
	return nil
}

func (m *Memory) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = false
	m.releases++
	return nil
}

// Held reports whether the port is currently acquired.
func (m *Memory) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// Acquires returns how many times Acquire succeeded.
func (m *Memory) Acquires() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquires
}

// Releases returns how many times Release was called.
func (m *Memory) Releases() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releases
}

// Level returns the last byte written.
func (m *Memory) Level() byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Writes returns a copy of every byte written, in order.
func (m *Memory) Writes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.writes...)
}
