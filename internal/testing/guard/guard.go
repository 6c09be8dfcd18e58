// Package guard flips the test-mode flag before any package under test runs.
// Import it for its side effect from _test.go files.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("ROLODEX_TEST_MODE") == "" {
			_ = os.Setenv("ROLODEX_TEST_MODE", "1")
		}
		if os.Getenv("JWT_SECRET") == "" {
			_ = os.Setenv("JWT_SECRET", "test-secret")
		}
	})
}
