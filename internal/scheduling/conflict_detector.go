package scheduling

// Conflicts reports whether proposed overlaps existing. Touching intervals
// (one ends exactly where the other starts) do not conflict.
//
// This is the single conflict rule shared by booking and slot listing.
func Conflicts(proposed, existing Interval) bool {
	startsInside := proposed.Start >= existing.Start && proposed.Start < existing.End
	endsInside := proposed.End > existing.Start && proposed.End <= existing.End
	covers := proposed.Start <= existing.Start && proposed.End >= existing.End
	return startsInside || endsInside || covers
}

// FindConflict returns the index of the first interval in existing that
// conflicts with proposed, or -1.
func FindConflict(proposed Interval, existing []Interval) int {
	for i, e := range existing {
		if Conflicts(proposed, e) {
			return i
		}
	}
	return -1
}
