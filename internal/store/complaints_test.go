package store

import "testing"

func TestNormalizePriority(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Low", PriorityLow},
		{" high ", PriorityHigh},
		{"Medium", PriorityMedium},
		{"", PriorityMedium},
		{"urgent", PriorityMedium},
	}
	for _, tt := range tests {
		if got := NormalizePriority(tt.in); got != tt.want {
			t.Errorf("NormalizePriority(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusOpen, StatusInProgress, StatusResolved, StatusClosed} {
		if !ValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "Pending", "open"} {
		if ValidStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
