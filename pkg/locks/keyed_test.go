package locks

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			km.Lock("veh-1")
			defer km.Unlock("veh-1")
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}

func TestKeyedMutex_DistinctKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex()

	km.Lock("veh-1")
	defer km.Unlock("veh-1")

	done := make(chan struct{})
	go func() {
		km.Lock("veh-2")
		km.Unlock("veh-2")
		close(done)
	}()

	<-done
}
