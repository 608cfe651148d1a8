package object

import (
	"fmt"
	"math/bits"
	"runtime"
	"runtime/debug"
)

// Size of the Object interface in bytes.
const ObjectSize = 2 * bits.UintSize / 8

// Returns the amount of free memory in bytes, according to GOMEMLIMIT.
func FreeMemory() int64 {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	currentAlloc := memStats.HeapAlloc
	gomemlimit := debug.SetMemoryLimit(-1)
	return int64(gomemlimit) - int64(currentAlloc) //nolint:unconvert,gosec // necessary, can be negative.
}

func SizeOk(n int) (bool, int64) {
	if n <= 256 { // no checks for small slices.
		return true, 0
	}
	free := FreeMemory()
	return ((free >= 0) && ((int64(n) * ObjectSize) < free)), free
}

// MakeObjectSlice is make() with a memory check so scripts building huge
// arrays get a runtime error instead of an OOM kill.
func MakeObjectSlice(n int) ([]Object, error) {
	if ok, _ := SizeOk(n); ok {
		return make([]Object, 0, n), nil
	}
	runtime.GC()
	if ok, free := SizeOk(n); !ok {
		return nil, fmt.Errorf("would exceed memory requesting %d values, %d free", n, free)
	}
	return make([]Object, 0, n), nil
}
