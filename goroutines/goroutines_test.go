package goroutines

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestErrors(t *testing.T) {
	t.Parallel()

	e := Errors{}
	if e.Error() != nil {
		t.Fatalf("TestErrors: Error() on empty Errors = %v", e.Error())
	}

	first := errors.New("first")
	e.Record(first)

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Record(fmt.Errorf("worker %d", i))
		}()
	}
	wg.Wait()

	if e.Error() != first {
		t.Errorf("TestErrors: Error() = %v, want first", e.Error())
	}
	if e.Len() != 11 || len(e.Errors()) != 11 {
		t.Errorf("TestErrors: recorded %d errors, want 11", e.Len())
	}
}
