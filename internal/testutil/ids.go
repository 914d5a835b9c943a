package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs returns an ID generator yielding prefix-0001, prefix-0002
// and so on. Stores and form sessions take it in place of uuid.NewString
// so golden output stays stable.
func SequentialIDs(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%04d", prefix, n)
	}
}
