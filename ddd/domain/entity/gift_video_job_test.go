package entity

import (
	"testing"
	"time"

	"giftvideo-service/ddd/domain/vo"
)

func TestNewGiftVideoJobEntity(t *testing.T) {
	spec := vo.EditSpec{Stickers: []vo.Sticker{{ID: "star", X: 120, Y: -5, Scale: 9}}}
	job := NewGiftVideoJobEntity("gift-1", "child-1", "videos/raw/a.mp4", spec, 0)

	if job.JobUUID() == "" || job.TrackingToken() == "" {
		t.Fatal("uuid and tracking token must be assigned at creation")
	}
	if job.JobUUID() == job.TrackingToken() {
		t.Error("job uuid and tracking token should be distinct")
	}
	if job.Status() != vo.JobStatusPending {
		t.Errorf("status = %v, want pending", job.Status())
	}
	if job.RetentionHours() != DefaultRetentionHours {
		t.Errorf("retention = %d, want default %d", job.RetentionHours(), DefaultRetentionHours)
	}
	// 编辑项在入口处收敛
	st := job.EditSpec().Stickers[0]
	if st.X != vo.MaxPlacement || st.Y != vo.MinPlacement || st.Scale != vo.MaxScale {
		t.Errorf("sticker not normalized: %+v", st)
	}
}

func TestNewGiftVideoJobEntityRetentionClamp(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, DefaultRetentionHours},
		{-3, MinRetentionHours},
		{1, 1},
		{72, 72},
		{168, 168},
		{500, MaxRetentionHours},
	}
	for _, c := range cases {
		job := NewGiftVideoJobEntity("g", "c", "p", vo.EditSpec{}, c.in)
		if job.RetentionHours() != c.want {
			t.Errorf("retention(%d) = %d, want %d", c.in, job.RetentionHours(), c.want)
		}
	}
}

func TestAttachOutputAndScrub(t *testing.T) {
	job := NewGiftVideoJobEntity("g", "c", "p", vo.EditSpec{}, 24)
	expires := time.Now().Add(24 * time.Hour)

	job.AttachOutput("gift-videos/composited/x/1.mp4", expires)
	if job.Status() != vo.JobStatusPendingReview {
		t.Errorf("status = %v, want pending_review", job.Status())
	}
	if !job.HasLiveOutput(time.Now()) {
		t.Error("fresh output should be live")
	}
	if job.HasLiveOutput(expires.Add(time.Minute)) {
		t.Error("output past expiry should not be live")
	}

	token := job.TrackingToken()
	job.Scrub()
	if job.OutputPath() != "" || job.OutputURL() != "" || job.ExpiresAt() != nil {
		t.Error("scrub must clear all media references")
	}
	if job.Status() != vo.JobStatusExpired {
		t.Errorf("status = %v, want expired", job.Status())
	}
	if job.TrackingToken() != token {
		t.Error("scrub must not touch the tracking token")
	}
	if job.SourcePath() != "p" {
		t.Error("scrub must not touch the source recording")
	}
}

func TestIsNotifiable(t *testing.T) {
	job := NewGiftVideoJobEntity("g", "c", "p", vo.EditSpec{}, 24)
	if job.IsNotifiable(time.Now()) {
		t.Error("pending job should not be notifiable")
	}

	job.AttachOutput("out.mp4", time.Now().Add(time.Hour))
	if !job.IsNotifiable(time.Now()) {
		t.Error("pending_review with live output should be notifiable")
	}

	// 有输出但已过期
	stale := RestoreGiftVideoJobEntity(
		"j", "g", "c", "p", "out.mp4", "",
		timePtr(time.Now().Add(-time.Hour)),
		vo.JobStatusPendingReview, "tok", 0, nil, 1, 24, "",
		vo.EditSpec{}, time.Now(), time.Now(),
	)
	if stale.IsNotifiable(time.Now()) {
		t.Error("expired output should not be notifiable")
	}
}

func TestIncrementAttempts(t *testing.T) {
	job := NewGiftVideoJobEntity("g", "c", "p", vo.EditSpec{}, 24)
	job.IncrementAttempts()
	job.IncrementAttempts()
	if job.Attempts() != 2 {
		t.Errorf("attempts = %d, want 2", job.Attempts())
	}
}

func TestRetention(t *testing.T) {
	job := NewGiftVideoJobEntity("g", "c", "p", vo.EditSpec{}, 48)
	if job.Retention() != 48*time.Hour {
		t.Errorf("retention = %v, want 48h", job.Retention())
	}
}

func timePtr(t time.Time) *time.Time { return &t }
