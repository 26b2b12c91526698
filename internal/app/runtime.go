package app

import (
	"os"
	"sync"
)

// InTestMode reports whether MANDAP_TEST_MODE is set, in which case the
// binaries skip startup side effects so integration harnesses can import them.
var InTestMode = sync.OnceValue(func() bool {
	return os.Getenv("MANDAP_TEST_MODE") == "1"
})
