package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

// testSecret satisfies the session secret length check in test binaries.
const testSecret = "stockdesk-test-secret-0123456789abcdef"

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("STOCKDESK_TEST_MODE", "1")
		if os.Getenv("SESSION_SECRET") == "" {
			_ = os.Setenv("SESSION_SECRET", testSecret)
		}
		if os.Getenv("STORE_DRIVER") == "" {
			_ = os.Setenv("STORE_DRIVER", "memory")
		}
		if os.Getenv("BCRYPT_COST") == "" {
			_ = os.Setenv("BCRYPT_COST", "4")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
