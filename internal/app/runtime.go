package app

import (
	"os"
	"sync"
)

// testModeEnv switches off side effects that get in the way of tests, such
// as per-IP rate limiting.
const testModeEnv = "RBAC_CONSOLE_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})

// InTestMode reports whether the console runs under tests.
func InTestMode() bool {
	return testMode()
}
