// Package permrun resolves layered configuration defines and enumerates,
// filters, and drives permutations of storage-geometry test cases.
package permrun

import "strings"

// Value is the integer type carried by every define.
type Value int64

// PredefineKey indexes the fixed, suite-independent define namespace.
type PredefineKey int

// The predefine namespace. These keys are shared by every suite and
// parameterize the simulated storage device.
const (
	ReadSize PredefineKey = iota
	ProgSize
	BlockSize
	BlockCount
	BlockCycles
	CacheSize
	LookaheadSize
	EraseValue
	EraseCycles
	BadBlockBehavior

	predefineCount
)

// PredefineCount reports the size of the predefine namespace.
func PredefineCount() int {
	return int(predefineCount)
}

var predefineNames = [predefineCount]string{
	ReadSize:         "READ_SIZE",
	ProgSize:         "PROG_SIZE",
	BlockSize:        "BLOCK_SIZE",
	BlockCount:       "BLOCK_COUNT",
	BlockCycles:      "BLOCK_CYCLES",
	CacheSize:        "CACHE_SIZE",
	LookaheadSize:    "LOOKAHEAD_SIZE",
	EraseValue:       "ERASE_VALUE",
	EraseCycles:      "ERASE_CYCLES",
	BadBlockBehavior: "BADBLOCK_BEHAVIOR",
}

// String returns the stable name for the key, as it appears in overrides and
// reports.
func (k PredefineKey) String() string {
	if k < 0 || k >= predefineCount {
		return "UNKNOWN"
	}
	return predefineNames[k]
}

// LookupPredefine maps a name back to its key.
func LookupPredefine(name string) (PredefineKey, bool) {
	for i, candidate := range predefineNames {
		if candidate == name {
			return PredefineKey(i), true
		}
	}
	return 0, false
}

// defaultValues is the lowest-precedence layer, always populated for every
// predefine key.
var defaultValues = [predefineCount]Value{
	ReadSize:         16,
	ProgSize:         16,
	BlockSize:        512,
	BlockCount:       1024,
	BlockCycles:      -1,
	CacheSize:        64,
	LookaheadSize:    16,
	EraseValue:       0xff,
	EraseCycles:      0,
	BadBlockBehavior: 0,
}

// DefineKey indexes the suite-local define namespace. Its size and names are
// fixed per active suite.
type DefineKey int

// TypeMask classifies suites and cases so selection can filter on them.
// Masks combine with bitwise or.
type TypeMask uint8

const (
	TypeNormal TypeMask = 1 << iota
	TypeReentrant
	TypeValgrind
)

// String renders the mask in the compact "nrV" notation used by reports.
func (t TypeMask) String() string {
	var b strings.Builder
	if t&TypeNormal != 0 {
		b.WriteByte('n')
	}
	if t&TypeReentrant != 0 {
		b.WriteByte('r')
	}
	if t&TypeValgrind != 0 {
		b.WriteByte('V')
	}
	return b.String()
}
