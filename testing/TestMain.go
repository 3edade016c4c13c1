package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

// testEnv holds defaults for variables app.LoadConfig requires.
var testEnv = map[string]string{
	"SESSION_SECRET": "test-session-secret",
	"CSRF_SECRET":    "test-csrf-secret",
	"API_BASE_URL":   "http://127.0.0.1:0",
}

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("RBAC_CONSOLE_TEST_MODE", "1")
		for key, value := range testEnv {
			if os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
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
