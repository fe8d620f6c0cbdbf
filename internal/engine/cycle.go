package engine

// oscillationDetector tracks the fingerprints of the current world-state
// after each fixpoint sweep within one external event.
//
// A sweep that leaves the state unchanged means propagation converged. A
// sweep that lands on an earlier, different state means the rule set is
// cycling:
//
//	G=true  → F=¬G=false, G=F=false → F=true, G=true → F=false, G=false ← revisited
//
// The detector is reset at the start of every external event.
type oscillationDetector struct {
	seen map[string]int // fingerprint → sweep number
	last string
}

func newOscillationDetector() *oscillationDetector {
	return &oscillationDetector{seen: make(map[string]int)}
}

// observe records the state reached after a sweep.
// converged is true when fp equals the previous state; cycled is true when
// fp was seen before but not immediately before.
func (d *oscillationDetector) observe(fp string, sweep int) (converged, cycled bool) {
	if fp == d.last {
		return true, false
	}
	if _, ok := d.seen[fp]; ok {
		return false, true
	}
	d.seen[fp] = sweep
	d.last = fp
	return false, false
}

// reset clears history for a new external event.
func (d *oscillationDetector) reset() {
	clear(d.seen)
	d.last = ""
}

// size returns the number of distinct states observed.
func (d *oscillationDetector) size() int {
	return len(d.seen)
}
