// Package guard flips the binaries into test mode when blank-imported from
// a test, and points external dependencies at inert defaults.
package guard

import "os"

var defaults = map[string]string{
	"LEDGERBOOK_TEST_MODE": "1",
	"SHEETS_BACKEND":       "memory",
	"GOTENBERG_URL":        "http://127.0.0.1:0",
}

func init() {
	for key, value := range defaults {
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}
