package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"giftvideo-service/ddd/domain/entity"
	"giftvideo-service/ddd/domain/gateway"
	"giftvideo-service/ddd/domain/vo"
)

func newPendingJob(t *testing.T, retentionHours int) *entity.GiftVideoJobEntity {
	t.Helper()
	return entity.NewGiftVideoJobEntity("gift-1", "child-1", "videos/raw/in.mp4", vo.EditSpec{}, retentionHours)
}

func TestExecuteComposeUnknownJob(t *testing.T) {
	repo := newFakeJobRepo()
	engine := &fakeEngine{}
	svc := NewComposeService(repo, newFakeStorage(), engine, testRetryPolicy(), time.Minute, t.TempDir())

	if err := svc.ExecuteCompose(context.Background(), "no-such-job"); err != nil {
		t.Fatalf("unknown job should be a no-op, got %v", err)
	}
	if engine.callCount() != 0 {
		t.Error("engine must not run for unknown job")
	}
}

func TestExecuteComposeNotClaimable(t *testing.T) {
	job := newPendingJob(t, 24)
	job.SetStatus(vo.JobStatusProcessing) // 别的worker已接手
	repo := newFakeJobRepo(job)
	engine := &fakeEngine{}
	svc := NewComposeService(repo, newFakeStorage(), engine, testRetryPolicy(), time.Minute, t.TempDir())

	if err := svc.ExecuteCompose(context.Background(), job.JobUUID()); err != nil {
		t.Fatalf("unclaimable job should be a no-op, got %v", err)
	}
	if engine.callCount() != 0 {
		t.Error("engine must not run without claiming the job")
	}
	if job.Status() != vo.JobStatusProcessing {
		t.Errorf("status changed to %v", job.Status())
	}
}

func TestExecuteComposeSuccess(t *testing.T) {
	job := newPendingJob(t, 48)
	repo := newFakeJobRepo(job)
	storage := newFakeStorage()
	engine := &fakeEngine{}
	svc := NewComposeService(repo, storage, engine, testRetryPolicy(), time.Minute, t.TempDir())

	before := time.Now()
	if err := svc.ExecuteCompose(context.Background(), job.JobUUID()); err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	if job.Status() != vo.JobStatusPendingReview {
		t.Errorf("status = %v, want pending_review", job.Status())
	}
	if len(storage.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(storage.uploads))
	}
	if !strings.HasPrefix(storage.uploads[0], "gift-videos/composited/"+job.JobUUID()+"/") {
		t.Errorf("unexpected object key %q", storage.uploads[0])
	}
	if job.OutputPath() != storage.uploads[0] {
		t.Errorf("output path %q does not match uploaded key %q", job.OutputPath(), storage.uploads[0])
	}
	// 过期时间 = 完成时间 + 保留时长
	if job.ExpiresAt() == nil {
		t.Fatal("expires_at not set")
	}
	want := before.Add(48 * time.Hour)
	if diff := job.ExpiresAt().Sub(want); diff < 0 || diff > time.Minute {
		t.Errorf("expires_at off by %v", diff)
	}
	if got := repo.attemptsPersisted; len(got) != 1 || got[0] != 1 {
		t.Errorf("attempts persisted = %v, want [1]", got)
	}
}

func TestExecuteComposeRetriesUntilExhausted(t *testing.T) {
	job := newPendingJob(t, 24)
	repo := newFakeJobRepo(job)
	engine := &fakeEngine{errs: []error{errBoom, errBoom, errBoom, errBoom}}
	svc := NewComposeService(repo, newFakeStorage(), engine, testRetryPolicy(), time.Minute, t.TempDir())

	if err := svc.ExecuteCompose(context.Background(), job.JobUUID()); err != nil {
		t.Fatalf("exhausted compose should settle the job, got %v", err)
	}

	if engine.callCount() != 3 {
		t.Errorf("render attempts = %d, want 3", engine.callCount())
	}
	if job.Status() != vo.JobStatusFailed {
		t.Errorf("status = %v, want failed", job.Status())
	}
	if !strings.Contains(job.ErrorMessage(), "after 3 attempts") {
		t.Errorf("error message %q should mention exhausted attempts", job.ErrorMessage())
	}
}

func TestExecuteComposeRecoversAfterTransientFailure(t *testing.T) {
	job := newPendingJob(t, 24)
	repo := newFakeJobRepo(job)
	storage := newFakeStorage()
	engine := &fakeEngine{errs: []error{errBoom}} // 第一次失败，第二次成功
	svc := NewComposeService(repo, storage, engine, testRetryPolicy(), time.Minute, t.TempDir())

	if err := svc.ExecuteCompose(context.Background(), job.JobUUID()); err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if engine.callCount() != 2 {
		t.Errorf("render attempts = %d, want 2", engine.callCount())
	}
	if job.Status() != vo.JobStatusPendingReview {
		t.Errorf("status = %v, want pending_review", job.Status())
	}
	if got := repo.attemptsPersisted; len(got) != 2 || got[1] != 2 {
		t.Errorf("attempts persisted = %v, want [1 2]", got)
	}
}

func TestExecuteComposeUploadFailureRetries(t *testing.T) {
	job := newPendingJob(t, 24)
	repo := newFakeJobRepo(job)
	storage := newFakeStorage()
	storage.uploadErrs = []error{errBoom}
	engine := &fakeEngine{}
	svc := NewComposeService(repo, storage, engine, testRetryPolicy(), time.Minute, t.TempDir())

	if err := svc.ExecuteCompose(context.Background(), job.JobUUID()); err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if job.Status() != vo.JobStatusPendingReview {
		t.Errorf("status = %v, want pending_review", job.Status())
	}
	if len(storage.uploads) != 1 {
		t.Errorf("uploads = %d, want 1 after retry", len(storage.uploads))
	}
}

func TestExecuteComposeDownloadFailureRetries(t *testing.T) {
	job := newPendingJob(t, 24)
	repo := newFakeJobRepo(job)
	storage := newFakeStorage()
	storage.downloadBlips["videos/raw/in.mp4"] = 1 // 一次存储抖动，之后成功
	engine := &fakeEngine{}
	svc := NewComposeService(repo, storage, engine, testRetryPolicy(), time.Minute, t.TempDir())

	if err := svc.ExecuteCompose(context.Background(), job.JobUUID()); err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if job.Status() != vo.JobStatusPendingReview {
		t.Errorf("status = %v, want pending_review", job.Status())
	}
	if engine.callCount() != 1 {
		t.Errorf("render attempts = %d, want 1", engine.callCount())
	}
	if storage.downloads["videos/raw/in.mp4"] != 2 {
		t.Errorf("source downloads = %d, want 2", storage.downloads["videos/raw/in.mp4"])
	}
	if got := repo.attemptsPersisted; len(got) != 2 || got[1] != 2 {
		t.Errorf("attempts persisted = %v, want [1 2]", got)
	}
}

func TestExecuteComposeDownloadFailuresExhaust(t *testing.T) {
	job := newPendingJob(t, 24)
	repo := newFakeJobRepo(job)
	storage := newFakeStorage()
	storage.downloadErrs["videos/raw/in.mp4"] = errBoom // 持续不可用
	engine := &fakeEngine{}
	svc := NewComposeService(repo, storage, engine, testRetryPolicy(), time.Minute, t.TempDir())

	if err := svc.ExecuteCompose(context.Background(), job.JobUUID()); err != nil {
		t.Fatalf("exhausted compose should settle the job, got %v", err)
	}
	if job.Status() != vo.JobStatusFailed {
		t.Errorf("status = %v, want failed", job.Status())
	}
	if engine.callCount() != 0 {
		t.Errorf("engine ran %d times without a source video", engine.callCount())
	}
	if !strings.Contains(job.ErrorMessage(), "after 3 attempts") || !strings.Contains(job.ErrorMessage(), "download source") {
		t.Errorf("error message %q should mention exhausted download attempts", job.ErrorMessage())
	}
}

// cancelingEngine 第一次渲染时触发停机信号
type cancelingEngine struct {
	fakeEngine
	cancel context.CancelFunc
}

func (e *cancelingEngine) Render(ctx context.Context, req gateway.RenderRequest) error {
	e.cancel()
	return e.fakeEngine.Render(ctx, req)
}

func TestExecuteComposeShutdownLeavesJobRecoverable(t *testing.T) {
	job := newPendingJob(t, 24)
	repo := newFakeJobRepo(job)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine := &cancelingEngine{fakeEngine: fakeEngine{errs: []error{errBoom}}, cancel: cancel}
	policy := testRetryPolicy()
	policy.BaseDelay = time.Minute // 退避期远大于测试时长，必须走取消分支
	policy.MaxDelay = time.Minute
	svc := NewComposeService(repo, newFakeStorage(), engine, policy, time.Minute, t.TempDir())

	err := svc.ExecuteCompose(ctx, job.JobUUID())
	if err == nil {
		t.Fatal("interrupted compose should surface the cancellation")
	}

	// 打断不是耗尽：任务留在processing，等卡死回收重新排队
	if job.Status() != vo.JobStatusProcessing {
		t.Errorf("status = %v, want processing for stuck recovery", job.Status())
	}
	if job.ErrorMessage() != "" {
		t.Errorf("interrupted job must not carry a terminal message, got %q", job.ErrorMessage())
	}
	if got := repo.attemptsPersisted; len(got) != 1 || got[0] != 1 {
		t.Errorf("attempts persisted = %v, want [1]", got)
	}
}

func TestExecuteComposeStaleCompletionDiscardsOutput(t *testing.T) {
	job := newPendingJob(t, 24)
	repo := newFakeJobRepo(job)
	repo.completeReject = true // 模拟任务已被别的流程挪走
	storage := newFakeStorage()
	engine := &fakeEngine{}
	svc := NewComposeService(repo, storage, engine, testRetryPolicy(), time.Minute, t.TempDir())

	if err := svc.ExecuteCompose(context.Background(), job.JobUUID()); err != nil {
		t.Fatalf("stale completion should be discarded silently, got %v", err)
	}
	if len(storage.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(storage.uploads))
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != storage.uploads[0] {
		t.Errorf("orphan object not cleaned up: deleted=%v uploads=%v", storage.deleted, storage.uploads)
	}
	if job.Status() == vo.JobStatusPendingReview {
		t.Error("job must not be marked complete by a stale result")
	}
}

func TestExecuteComposeMusicFailureDegrades(t *testing.T) {
	spec := vo.EditSpec{MusicURL: "music/track.mp3"}
	job := entity.NewGiftVideoJobEntity("gift-1", "child-1", "videos/raw/in.mp4", spec, 24)
	repo := newFakeJobRepo(job)
	storage := newFakeStorage()
	storage.downloadErrs["music/track.mp3"] = errBoom
	engine := &fakeEngine{}
	svc := NewComposeService(repo, storage, engine, testRetryPolicy(), time.Minute, t.TempDir())

	// 背景音乐拿不到不应导致任务失败
	if err := svc.ExecuteCompose(context.Background(), job.JobUUID()); err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if job.Status() != vo.JobStatusPendingReview {
		t.Errorf("status = %v, want pending_review", job.Status())
	}
}
