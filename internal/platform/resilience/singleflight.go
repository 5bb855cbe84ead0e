package resilience

import "sync"

// Flight deduplicates concurrent calls for the same key: callers that
// arrive while a key is in flight wait for and share the first
// caller's result.
type Flight[T any] struct {
	mu    sync.Mutex
	calls map[string]*flightCall[T]
}

type flightCall[T any] struct {
	wg  sync.WaitGroup
	val T
	err error
}

// Do runs fn once per concurrently-requested key. The third return
// value reports whether the result was shared from another caller.
func (f *Flight[T]) Do(key string, fn func() (T, error)) (T, error, bool) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]*flightCall[T])
	}

	if c, ok := f.calls[key]; ok {
		f.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := &flightCall[T]{}
	c.wg.Add(1)
	f.calls[key] = c
	f.mu.Unlock()

	c.val, c.err = fn()
	c.wg.Done()

	f.mu.Lock()
	delete(f.calls, key)
	f.mu.Unlock()

	return c.val, c.err, false
}
