//go:build !raftdebug

package invariants

const enabled = false
