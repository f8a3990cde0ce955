package block

// Toggle advances an openable block's orientation by one step, acting
// as a placeholder for richer door/gate toggle logic until blocks carry
// properties beyond orientation.
func Toggle(s BlockState) BlockState {
	next := (s.Orientation() + 1) % 6
	return s.WithOrientation(next)
}
