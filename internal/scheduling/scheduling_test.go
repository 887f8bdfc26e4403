package scheduling

import (
	"testing"

	"clinic-scheduling-api/internal/domain/entity"

	"github.com/google/uuid"
)

func mustInterval(t *testing.T, start, end string) Interval {
	t.Helper()
	iv, err := ParseInterval(start, end)
	if err != nil {
		t.Fatalf("ParseInterval(%s, %s): %v", start, end, err)
	}
	return iv
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Minutes
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"9:30", 0, true},
		{"24:00", 1440, false},
		{"24:01", 0, true},
		{"25:00", 0, true},
		{"12:60", 0, true},
		{"ab:cd", 0, true},
		{"09:30:00", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMinutesString(t *testing.T) {
	if got := Minutes(545).String(); got != "09:05" {
		t.Errorf("got %s", got)
	}
}

func TestParseInterval_RejectsEmptyOrInverted(t *testing.T) {
	if _, err := ParseInterval("10:00", "10:00"); err == nil {
		t.Error("expected start == end to fail")
	}
	if _, err := ParseInterval("11:00", "10:00"); err == nil {
		t.Error("expected start > end to fail")
	}
	if _, err := ParseInterval("24:00", "24:00"); err == nil {
		t.Error("expected a window starting at midnight's close to fail")
	}
}

func TestParseInterval_UntilMidnight(t *testing.T) {
	iv, err := ParseInterval("22:00", "24:00")
	if err != nil {
		t.Fatalf("ParseInterval: %v", err)
	}
	if iv.End != EndOfDay || iv.Duration() != 120 {
		t.Fatalf("got %+v", iv)
	}

	slots := GenerateSlots(iv, 30, []Interval{mustInterval(t, "23:30", "24:00")})
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	last := slots[3]
	if last.Start.String() != "23:30" || last.End.String() != "24:00" || last.Available {
		t.Errorf("last slot = %s-%s available=%v", last.Start, last.End, last.Available)
	}
}

func TestConflicts(t *testing.T) {
	existing := mustInterval(t, "10:00", "10:30")

	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"exact match", "10:00", "10:30", true},
		{"adjacent before", "09:30", "10:00", false},
		{"adjacent after", "10:30", "11:00", false},
		{"starts inside", "10:15", "10:45", true},
		{"ends inside", "09:45", "10:15", true},
		{"covers", "09:00", "11:00", true},
		{"inside", "10:05", "10:25", true},
		{"far away", "14:00", "15:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Conflicts(mustInterval(t, tt.start, tt.end), existing)
			if got != tt.want {
				t.Errorf("Conflicts(%s-%s) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestConflictsMatchesHalfOpenOverlap(t *testing.T) {
	// Exhaustive over a small grid of quarter-hour intervals.
	for ps := Minutes(0); ps < 120; ps += 15 {
		for pe := ps + 15; pe <= 120; pe += 15 {
			for es := Minutes(0); es < 120; es += 15 {
				for ee := es + 15; ee <= 120; ee += 15 {
					p, e := Interval{ps, pe}, Interval{es, ee}
					want := p.Start < e.End && e.Start < p.End
					if got := Conflicts(p, e); got != want {
						t.Fatalf("Conflicts(%v, %v) = %v, want %v", p, e, got, want)
					}
				}
			}
		}
	}
}

func TestGenerateSlots_FullDay(t *testing.T) {
	slots := GenerateSlots(mustInterval(t, "09:00", "17:00"), 30, nil)

	if len(slots) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(slots))
	}
	if first := slots[0]; first.Start.String() != "09:00" || first.End.String() != "09:30" {
		t.Errorf("first slot = %s-%s", first.Start, first.End)
	}
	if last := slots[15]; last.Start.String() != "16:30" || last.End.String() != "17:00" {
		t.Errorf("last slot = %s-%s", last.Start, last.End)
	}
	for _, s := range slots {
		if !s.Available {
			t.Errorf("slot %s should be available", s.Start)
		}
	}
}

func TestGenerateSlots_MarksBooked(t *testing.T) {
	booked := []Interval{mustInterval(t, "10:00", "10:30")}
	slots := GenerateSlots(mustInterval(t, "09:00", "12:00"), 30, booked)

	want := map[string]bool{
		"09:30": true,
		"10:00": false,
		"10:30": true,
	}
	for _, s := range slots {
		if expected, ok := want[s.Start.String()]; ok && s.Available != expected {
			t.Errorf("slot %s available = %v, want %v", s.Start, s.Available, expected)
		}
	}

	// A booking attempt straddling the taken slot must be refused.
	if FindConflict(mustInterval(t, "09:45", "10:15"), booked) < 0 {
		t.Error("expected 09:45-10:15 to conflict")
	}
}

func TestGenerateSlots_DropsPartialSlot(t *testing.T) {
	slots := GenerateSlots(mustInterval(t, "09:00", "10:45"), 30, nil)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	if slots[2].End.String() != "10:30" {
		t.Errorf("last slot ends at %s", slots[2].End)
	}
}

func TestGenerateSlots_AgreesWithConflicts(t *testing.T) {
	window := mustInterval(t, "08:00", "12:00")
	booked := []Interval{
		mustInterval(t, "08:10", "08:40"),
		mustInterval(t, "09:30", "10:00"),
		mustInterval(t, "11:00", "12:00"),
	}
	for _, s := range GenerateSlots(window, 20, booked) {
		conflict := FindConflict(s.Interval(), booked) >= 0
		if s.Available == conflict {
			t.Errorf("slot %s-%s: available=%v but conflict=%v", s.Start, s.End, s.Available, conflict)
		}
	}
}

func TestGenerateSlots_InvalidInput(t *testing.T) {
	if got := GenerateSlots(Interval{Start: 600, End: 540}, 30, nil); len(got) != 0 {
		t.Errorf("inverted window produced %d slots", len(got))
	}
	if got := GenerateSlots(Interval{Start: 540, End: 600}, 0, nil); len(got) != 0 {
		t.Errorf("zero duration produced %d slots", len(got))
	}
}

func TestCanTransition(t *testing.T) {
	all := []entity.AppointmentStatus{
		entity.AppointmentStatusPending,
		entity.AppointmentStatusConfirmed,
		entity.AppointmentStatusCancelled,
		entity.AppointmentStatusCompleted,
	}
	allowed := map[[2]entity.AppointmentStatus]bool{
		{entity.AppointmentStatusPending, entity.AppointmentStatusConfirmed}:   true,
		{entity.AppointmentStatusPending, entity.AppointmentStatusCancelled}:   true,
		{entity.AppointmentStatusPending, entity.AppointmentStatusCompleted}:   true,
		{entity.AppointmentStatusConfirmed, entity.AppointmentStatusCancelled}: true,
		{entity.AppointmentStatusConfirmed, entity.AppointmentStatusCompleted}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]entity.AppointmentStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}

	if !IsTerminal(entity.AppointmentStatusCompleted) || !IsTerminal(entity.AppointmentStatusCancelled) {
		t.Error("completed and cancelled must be terminal")
	}
	if IsTerminal(entity.AppointmentStatusPending) {
		t.Error("pending must not be terminal")
	}
}

func TestCanSetStatus_Matrix(t *testing.T) {
	patientID, providerID := uuid.New(), uuid.New()
	appt := &entity.Appointment{ID: uuid.New(), PatientID: patientID, ProviderID: providerID}

	owner := func(role entity.CallerRole) entity.Caller {
		if role == entity.CallerRoleProvider {
			return entity.Caller{ID: providerID, Role: role}
		}
		return entity.Caller{ID: patientID, Role: role}
	}

	tests := []struct {
		name   string
		caller entity.Caller
		allow  []entity.AppointmentStatus
	}{
		{"owning provider", owner(entity.CallerRoleProvider), []entity.AppointmentStatus{
			entity.AppointmentStatusConfirmed, entity.AppointmentStatusCancelled, entity.AppointmentStatusCompleted}},
		{"owning patient", owner(entity.CallerRolePatient), []entity.AppointmentStatus{
			entity.AppointmentStatusCancelled}},
		{"admin", entity.Caller{ID: uuid.New(), Role: entity.CallerRoleAdmin}, []entity.AppointmentStatus{
			entity.AppointmentStatusPending, entity.AppointmentStatusConfirmed,
			entity.AppointmentStatusCancelled, entity.AppointmentStatusCompleted}},
		{"other provider", entity.Caller{ID: uuid.New(), Role: entity.CallerRoleProvider}, nil},
		{"other patient", entity.Caller{ID: uuid.New(), Role: entity.CallerRolePatient}, nil},
		{"pharmacy", entity.Caller{ID: uuid.New(), Role: entity.CallerRolePharmacy}, nil},
	}

	targets := []entity.AppointmentStatus{
		entity.AppointmentStatusPending,
		entity.AppointmentStatusConfirmed,
		entity.AppointmentStatusCancelled,
		entity.AppointmentStatusCompleted,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed := map[entity.AppointmentStatus]bool{}
			for _, s := range tt.allow {
				allowed[s] = true
			}
			for _, target := range targets {
				if got := CanSetStatus(tt.caller, appt, target); got != allowed[target] {
					t.Errorf("CanSetStatus(%s) = %v, want %v", target, got, allowed[target])
				}
			}
		})
	}
}

func TestCanView(t *testing.T) {
	patientID, providerID := uuid.New(), uuid.New()
	appt := &entity.Appointment{PatientID: patientID, ProviderID: providerID}

	tests := []struct {
		caller entity.Caller
		want   bool
	}{
		{entity.Caller{ID: patientID, Role: entity.CallerRolePatient}, true},
		{entity.Caller{ID: providerID, Role: entity.CallerRoleProvider}, true},
		{entity.Caller{ID: uuid.New(), Role: entity.CallerRoleAdmin}, true},
		{entity.Caller{ID: providerID, Role: entity.CallerRolePatient}, false},
		{entity.Caller{ID: patientID, Role: entity.CallerRolePharmacy}, false},
	}
	for _, tt := range tests {
		if got := CanView(tt.caller, appt); got != tt.want {
			t.Errorf("CanView(%s %s) = %v, want %v", tt.caller.Role, tt.caller.ID, got, tt.want)
		}
	}
}

func TestCanWriteProviderNotes(t *testing.T) {
	providerID := uuid.New()
	appt := &entity.Appointment{ProviderID: providerID}

	if !CanWriteProviderNotes(entity.Caller{ID: providerID, Role: entity.CallerRoleProvider}, appt) {
		t.Error("owning provider should write notes")
	}
	if CanWriteProviderNotes(entity.Caller{ID: uuid.New(), Role: entity.CallerRoleAdmin}, appt) {
		t.Error("admin should not write provider notes")
	}
}
