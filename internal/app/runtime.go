package app

import (
	"os"
	"sync"
)

// TestModeEnv makes the binaries return before touching postgres, redis or the network.
const TestModeEnv = "LAXMI_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(TestModeEnv) == "1"
})

// InTestMode reports whether runtime side effects are disabled. The flag is read once.
func InTestMode() bool {
	return testMode()
}
