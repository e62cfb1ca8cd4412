package scheduler

import "testing"

func TestDetectConflicts(t *testing.T) {
	existing := []Booking{
		{ID: "a", Room: "B4A", Day: "SENIN", StartTime: "07:00", EndTime: "08:40", CourseName: "Kalkulus"},
		{ID: "b", Room: "B4A", Day: "senin", StartTime: "09:00", EndTime: "10:00", CourseName: "MAINTENANCE"},
		{ID: "c", Room: "B4B", Day: "SENIN", StartTime: "07:00", EndTime: "08:40"},
		{ID: "d", Room: "B4A", Day: "SELASA", StartTime: "07:00", EndTime: "08:40"},
		{ID: "e", Room: "B4A", Day: "SENIN", StartTime: "", EndTime: "08:40"},
	}

	t.Run("room overlap produces conflict", func(t *testing.T) {
		conflicts := DetectConflicts(existing, Booking{ID: "new", Room: "B4A", Day: "Senin", StartTime: "08:00", EndTime: "09:30"})
		if len(conflicts) != 2 {
			t.Fatalf("expected 2 conflicts, got %+v", conflicts)
		}
		if conflicts[0].WithBookingID != "a" || conflicts[0].Type != ConflictTypeRoom {
			t.Fatalf("unexpected first conflict %+v", conflicts[0])
		}
		if conflicts[0].Overlap.String() != "08:00-08:40" {
			t.Fatalf("unexpected overlap %s", conflicts[0].Overlap)
		}
		if conflicts[1].WithBookingID != "b" || conflicts[1].Type != ConflictTypeMaintenance {
			t.Fatalf("unexpected second conflict %+v", conflicts[1])
		}
	})

	t.Run("touching bookings do not conflict", func(t *testing.T) {
		conflicts := DetectConflicts(existing, Booking{Room: "B4A", Day: "SENIN", StartTime: "08:40", EndTime: "09:00"})
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("malformed candidate never conflicts", func(t *testing.T) {
		conflicts := DetectConflicts(existing, Booking{Room: "B4A", Day: "SENIN", StartTime: "10:00", EndTime: "07:00"})
		if conflicts != nil {
			t.Fatalf("expected no conflicts for inverted candidate, got %+v", conflicts)
		}
	})
}

func TestDeriveKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   Kind
		course string
		want   Kind
	}{
		{"", "Algoritma", KindClass},
		{"", "maintenance ruang", KindMaintenance},
		{"Maintenance", "Algoritma", KindMaintenance},
		{KindClass, "MAINTENANCE", KindClass},
		{"unknown", "MAINTENANCE", KindMaintenance},
	}
	for _, tc := range tests {
		if got := DeriveKind(tc.kind, tc.course); got != tc.want {
			t.Fatalf("DeriveKind(%q, %q) = %q, want %q", tc.kind, tc.course, got, tc.want)
		}
	}
}
