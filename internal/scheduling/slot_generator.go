package scheduling

// DefaultSlotMinutes is the slot length used when none is configured.
const DefaultSlotMinutes = 30

// Slot is a fixed-length candidate booking within a working window.
type Slot struct {
	Start     Minutes
	End       Minutes
	Available bool
}

// Interval returns the slot's time range.
func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// GenerateSlots splits window into consecutive slots of the given length,
// dropping a trailing partial slot. A slot is unavailable when it conflicts
// with any booked interval.
func GenerateSlots(window Interval, durationMinutes int, booked []Interval) []Slot {
	if durationMinutes <= 0 || window.Start >= window.End {
		return []Slot{}
	}

	dur := Minutes(durationMinutes)
	slots := make([]Slot, 0, window.Duration()/durationMinutes)
	for t := window.Start; t+dur <= window.End; t += dur {
		iv := Interval{Start: t, End: t + dur}
		slots = append(slots, Slot{
			Start:     iv.Start,
			End:       iv.End,
			Available: FindConflict(iv, booked) < 0,
		})
	}
	return slots
}
