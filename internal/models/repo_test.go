package models

import "testing"

func TestFlagBitValues(t *testing.T) {
	if FetchNewHead != 2 || FetchFastForward != 64 || FetchError != 128 {
		t.Errorf("fetch flags drifted: new_head=%d fast_forward=%d error=%d", FetchNewHead, FetchFastForward, FetchError)
	}
	if PushNewHead != 2 || PushFastForward != 256 || PushUpToDate != 512 || PushError != 1024 {
		t.Errorf("push flags drifted: new_head=%d fast_forward=%d up_to_date=%d error=%d",
			PushNewHead, PushFastForward, PushUpToDate, PushError)
	}
}

func TestFlagString(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"fetch zero", FetchFlag(0).String(), "none"},
		{"fetch single", FetchFastForward.String(), "fast_forward"},
		{"fetch combined", (FetchNewTag | FetchForcedUpdate).String(), "new_tag|forced_update"},
		{"push single", PushUpToDate.String(), "up_to_date"},
		{"push combined", (PushRejected | PushError).String(), "rejected|error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestEmptyRepoState(t *testing.T) {
	st := EmptyRepoState(true)
	if !st.Empty || st.Branch != None || st.Commit != None || !st.Dirty {
		t.Errorf("EmptyRepoState(true) = %+v", st)
	}
}
