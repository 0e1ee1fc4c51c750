package vo

import "testing"

func TestJobStatusIsValid(t *testing.T) {
	valid := []JobStatus{JobStatusPending, JobStatusProcessing, JobStatusPendingReview, JobStatusFailed, JobStatusExpired}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("status %q should be valid", s)
		}
	}
	if JobStatus("done").IsValid() {
		t.Error("unknown status should be invalid")
	}
	if JobStatus("").IsValid() {
		t.Error("empty status should be invalid")
	}
}

func TestJobStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		ok       bool
	}{
		{JobStatusPending, JobStatusProcessing, true},
		{JobStatusPending, JobStatusPendingReview, false},
		{JobStatusPending, JobStatusFailed, false},
		{JobStatusProcessing, JobStatusPendingReview, true},
		{JobStatusProcessing, JobStatusFailed, true},
		{JobStatusProcessing, JobStatusPending, true}, // 卡死任务回收
		{JobStatusProcessing, JobStatusExpired, false},
		{JobStatusPendingReview, JobStatusExpired, true},
		{JobStatusPendingReview, JobStatusProcessing, false},
		{JobStatusFailed, JobStatusPending, true}, // 运维重新提交
		{JobStatusFailed, JobStatusProcessing, false},
		{JobStatusExpired, JobStatusPending, false},
		{JobStatusExpired, JobStatusProcessing, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	if !JobStatusExpired.IsTerminal() {
		t.Error("expired should be terminal")
	}
	for _, s := range []JobStatus{JobStatusPending, JobStatusProcessing, JobStatusPendingReview, JobStatusFailed} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestNewJobStatusFromString(t *testing.T) {
	if st, ok := NewJobStatusFromString("pending_review"); !ok || st != JobStatusPendingReview {
		t.Errorf("got (%v, %v)", st, ok)
	}
	if _, ok := NewJobStatusFromString("bogus"); ok {
		t.Error("bogus status should not parse")
	}
}
