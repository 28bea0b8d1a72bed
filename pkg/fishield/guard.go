package fishield

// MultiIfFailin evaluates cond three times and reports true (enter the
// guarded branch) if any single evaluation was true. This mirrors
// MULTI_IF_FAILIN(condition) = condition || condition || condition: a
// transient fault that flips one evaluation back to false cannot by itself
// suppress entry into the branch.
//
// The call sites guard failure checks whose branch rejects the input: the
// outer signature checks of both pipelines (benign drop for a frame,
// lockout for a subscription update) and the key-tree out-of-range check,
// so a glitch cannot hide the failure.
func MultiIfFailin(cond func() bool) bool {
	return cond() || cond() || cond()
}

// MultiIfFailout evaluates cond three times and reports true (proceed) only
// if every evaluation was true. This mirrors MULTI_IF_FAILOUT(condition) =
// condition && condition && condition: a transient fault that flips one
// evaluation to true cannot by itself let execution proceed.
func MultiIfFailout(cond func() bool) bool {
	return cond() && cond() && cond()
}
