// Package invariants checks conditions which can only be broken by a programming error.
// Checks panic only in binaries built with the raftdebug tag and are no-ops otherwise.
package invariants

import "fmt"

func Check(condition bool, format string, args ...any) {
	if enabled && !condition {
		panic(any(fmt.Sprintf("invariant violated: "+format, args...)))
	}
}
