package nonce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValueString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "12312313131", Value(12312313131).String())
}

func TestGetMilli(t *testing.T) {
	t.Parallel()
	var nonce Nonce
	now := time.UnixMilli(1618690640656)
	assert.Equal(t, Value(1618690640656), nonce.GetMilli(now), "first nonce should be the wall clock")
	assert.Equal(t, Value(1618690640657), nonce.GetMilli(now), "same clock reading must still increase")
	assert.Equal(t, Value(1618690640658), nonce.GetMilli(now.Add(-time.Second)), "clock going backwards must still increase")
	assert.Equal(t, Value(1618690641656), nonce.GetMilli(now.Add(time.Second)), "advanced clock should be used as is")
}

func TestNonceConcurrency(t *testing.T) {
	t.Parallel()
	var nonce Nonce
	now := time.UnixMilli(12312)
	var wg sync.WaitGroup
	seen := make(chan Value, 1000)
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- nonce.GetMilli(now)
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[Value]struct{})
	var highest Value
	for v := range seen {
		unique[v] = struct{}{}
		if v > highest {
			highest = v
		}
	}
	assert.Len(t, unique, 1000, "every concurrent nonce must be unique")
	assert.Equal(t, Value(12312+999), highest)
	assert.Equal(t, Value(12312+1000), nonce.GetMilli(now), "next nonce should follow the highest issued")
}
