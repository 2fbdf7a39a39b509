package locks

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyed_SerializesSameKey(t *testing.T) {
	k := NewKeyed()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// alternate the argument order; sorted locking must keep this deadlock free
			var unlock func()
			if i%2 == 0 {
				unlock = k.Lock("cash", "loans")
			} else {
				unlock = k.Lock("loans", "cash")
			}
			counter++
			unlock()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestKeyed_DuplicateKeys(t *testing.T) {
	k := NewKeyed()
	unlock := k.Lock("cash", "cash")
	unlock()

	unlock = k.Lock("cash")
	unlock()
}
