package models

import "testing"

func TestRequestStatusClasses(t *testing.T) {
	tests := []struct {
		status   RequestStatus
		active   bool
		terminal bool
	}{
		{RequestPending, true, false},
		{RequestApproved, true, false},
		{RequestRefused, false, true},
		{RequestCollected, false, true},
		{RequestCancelled, false, true},
	}
	for _, tt := range tests {
		if got := tt.status.Active(); got != tt.active {
			t.Errorf("%s.Active() = %v, want %v", tt.status, got, tt.active)
		}
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}
