package scheduling

// Overlaps reports whether two ranges share at least one minute. Ranges are
// half-open, so a class ending at 10:30 does not collide with one starting at 10:30.
func Overlaps(a, b TimeRange) (bool, error) {
	s1, e1, err := a.Minutes()
	if err != nil {
		return false, err
	}
	s2, e2, err := b.Minutes()
	if err != nil {
		return false, err
	}
	return overlapsMinutes(s1, e1, s2, e2), nil
}

func overlapsMinutes(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}
