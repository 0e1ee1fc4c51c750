package service

import (
	"context"
	"testing"
	"time"

	"giftvideo-service/ddd/domain/entity"
	"giftvideo-service/ddd/domain/vo"
)

func newExpiredJob(t *testing.T, outputKey string) *entity.GiftVideoJobEntity {
	t.Helper()
	expired := time.Now().Add(-time.Hour)
	return entity.RestoreGiftVideoJobEntity(
		"job-"+outputKey, "gift-1", "child-1", "videos/raw/in.mp4",
		outputKey, "", &expired,
		vo.JobStatusPendingReview, "tok-"+outputKey, 3, nil, 1, 24, "",
		vo.EditSpec{}, time.Now().Add(-48*time.Hour), time.Now().Add(-time.Hour),
	)
}

func TestSweepExpiredScrubsJobs(t *testing.T) {
	a := newExpiredJob(t, "a.mp4")
	b := newExpiredJob(t, "b.mp4")
	repo := newFakeJobRepo(a, b)
	storage := newFakeStorage()
	svc := NewSweepService(repo, storage)

	report, err := svc.SweepExpired(context.Background(), 10)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Scanned != 2 || report.Scrubbed != 2 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
	for _, job := range []*entity.GiftVideoJobEntity{a, b} {
		if job.Status() != vo.JobStatusExpired {
			t.Errorf("job %s status = %v, want expired", job.JobUUID(), job.Status())
		}
		if job.OutputPath() != "" || job.ExpiresAt() != nil {
			t.Errorf("job %s media references not cleared", job.JobUUID())
		}
		if job.SourcePath() == "" {
			t.Errorf("job %s source recording must survive the sweep", job.JobUUID())
		}
	}
	if len(storage.deleted) != 2 {
		t.Errorf("deleted = %v, want both outputs", storage.deleted)
	}
}

func TestSweepExpiredDeleteFailureLeavesRecord(t *testing.T) {
	ok := newExpiredJob(t, "ok.mp4")
	bad := newExpiredJob(t, "bad.mp4")
	repo := newFakeJobRepo(ok, bad)
	storage := newFakeStorage()
	storage.deleteErrs["bad.mp4"] = errBoom
	svc := NewSweepService(repo, storage)

	report, err := svc.SweepExpired(context.Background(), 10)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Scanned != 2 || report.Scrubbed != 1 || report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
	// 删不掉的记录保持原样，等下一轮重试
	if bad.Status() != vo.JobStatusPendingReview || bad.OutputPath() != "bad.mp4" {
		t.Errorf("failed job must keep its record: status=%v output=%q", bad.Status(), bad.OutputPath())
	}
	if ok.Status() != vo.JobStatusExpired {
		t.Errorf("ok job status = %v, want expired", ok.Status())
	}
}

func TestSweepExpiredIdempotent(t *testing.T) {
	job := newExpiredJob(t, "a.mp4")
	repo := newFakeJobRepo(job)
	storage := newFakeStorage()
	svc := NewSweepService(repo, storage)

	if _, err := svc.SweepExpired(context.Background(), 10); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	report, err := svc.SweepExpired(context.Background(), 10)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if report.Scanned != 0 || report.Scrubbed != 0 {
		t.Errorf("second sweep should find nothing: %+v", report)
	}
}

func TestRecoverStuck(t *testing.T) {
	stuck := entity.NewGiftVideoJobEntity("gift-1", "child-1", "videos/raw/in.mp4", vo.EditSpec{}, 24)
	stuck.SetStatus(vo.JobStatusProcessing)
	healthy := entity.NewGiftVideoJobEntity("gift-2", "child-2", "videos/raw/in2.mp4", vo.EditSpec{}, 24)
	repo := newFakeJobRepo(stuck, healthy)
	svc := NewSweepService(repo, newFakeStorage())

	recovered, err := svc.RecoverStuck(context.Background(), 30*time.Minute, 10)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if len(recovered) != 1 || recovered[0] != stuck.JobUUID() {
		t.Errorf("recovered = %v, want [%s]", recovered, stuck.JobUUID())
	}
	if stuck.Status() != vo.JobStatusPending {
		t.Errorf("stuck job status = %v, want pending", stuck.Status())
	}
	if healthy.Status() != vo.JobStatusPending {
		t.Errorf("healthy pending job should be untouched, got %v", healthy.Status())
	}
}
