// Package guard switches the binaries into test mode when blank-imported by a test.
package guard

import (
	"os"

	"github.com/laxmi-pos/laxmi-pos/internal/app"
)

func init() {
	if os.Getenv(app.TestModeEnv) == "" {
		_ = os.Setenv(app.TestModeEnv, "1")
	}
}
