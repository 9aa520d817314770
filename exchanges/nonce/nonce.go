package nonce

import (
	"strconv"
	"sync"
	"time"
)

// Nonce struct holds the nonce value
type Nonce struct {
	n uint64
	m sync.Mutex
}

// GetMilli returns the wall clock in milliseconds as the next nonce. If the
// clock has not moved past the previously issued value the previous value is
// incremented instead, so returned values are strictly increasing.
func (n *Nonce) GetMilli(now time.Time) Value {
	ms := uint64(now.UnixMilli())
	n.m.Lock()
	defer n.m.Unlock()
	if ms <= n.n {
		ms = n.n + 1
	}
	n.n = ms
	return Value(ms)
}

// Value is a nonce issued by GetMilli
type Value uint64

// String is a Value method that changes format to a string
func (v Value) String() string {
	return strconv.FormatUint(uint64(v), 10)
}
