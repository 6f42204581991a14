package app

import (
	"os"
	"strconv"
	"sync/atomic"
)

// TestModeEnv names the variable that keeps the binaries from starting
// servers and workers, e.g. when their packages are loaded by go test.
const TestModeEnv = "LEDGERBOOK_TEST_MODE"

var testMode atomic.Pointer[bool]

// InTestMode reports whether runtime startup should be skipped. The
// variable is read once; call RefreshTestMode after changing it.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	return RefreshTestMode()
}

// RefreshTestMode re-reads the environment and returns the new value.
func RefreshTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	on = err == nil && on
	testMode.Store(&on)
	return on
}
