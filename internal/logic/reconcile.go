package logic

// Reconcile merges the cached unit state with a freshly reported one.
//
// On a successful read the unit is the source of truth — it may have been
// switched at the unit itself or with the IR remote — so the reported
// values replace the cached ones. The second return value reports whether
// the cached power state disagreed with the unit; callers log that as an
// out-of-band change, it is never fatal.
//
// On a read failure the cached state is kept as-is: the last known value
// is assumed to still hold. That is a deliberate staleness trade-off.
func Reconcile(cached UnitState, reported UnitState, readErr error) (UnitState, bool) {
	if readErr != nil {
		return cached, false
	}
	mismatch := cached.Power != reported.Power
	return reported, mismatch
}
