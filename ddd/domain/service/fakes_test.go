package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"giftvideo-service/ddd/domain/entity"
	"giftvideo-service/ddd/domain/gateway"
	"giftvideo-service/ddd/domain/vo"
)

// fakeJobRepo 内存仓储，保留条件更新语义供服务测试使用
type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*entity.GiftVideoJobEntity

	attemptsPersisted []int
	completeReject    bool
	scrubErr          error
}

func newFakeJobRepo(jobs ...*entity.GiftVideoJobEntity) *fakeJobRepo {
	r := &fakeJobRepo{jobs: make(map[string]*entity.GiftVideoJobEntity)}
	for _, j := range jobs {
		r.jobs[j.JobUUID()] = j
	}
	return r
}

func (r *fakeJobRepo) CreateJob(_ context.Context, job *entity.GiftVideoJobEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.JobUUID()] = job
	return nil
}

func (r *fakeJobRepo) GetJob(_ context.Context, jobUUID string) (*entity.GiftVideoJobEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[jobUUID], nil
}

func (r *fakeJobRepo) GetJobByToken(_ context.Context, token string) (*entity.GiftVideoJobEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.TrackingToken() == token {
			return j, nil
		}
	}
	return nil, nil
}

func (r *fakeJobRepo) QueryJobsByStatus(_ context.Context, status vo.JobStatus, limit int) ([]*entity.GiftVideoJobEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.GiftVideoJobEntity
	for _, j := range r.jobs {
		if j.Status() == status && len(out) < limit {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) TransitionStatus(_ context.Context, jobUUID string, from, to vo.JobStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobUUID]
	if !ok || j.Status() != from {
		return false, nil
	}
	j.SetStatus(to)
	return true, nil
}

func (r *fakeJobRepo) CompleteJob(_ context.Context, jobUUID, outputPath string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobUUID]
	if !ok || j.Status() != vo.JobStatusProcessing || r.completeReject {
		return false, nil
	}
	j.AttachOutput(outputPath, expiresAt)
	return true, nil
}

func (r *fakeJobRepo) FailJob(_ context.Context, jobUUID, message string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobUUID]
	if !ok || j.Status() != vo.JobStatusProcessing {
		return false, nil
	}
	j.SetStatus(vo.JobStatusFailed)
	j.SetErrorMessage(message)
	return true, nil
}

func (r *fakeJobRepo) UpdateAttempts(_ context.Context, jobUUID string, attempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attemptsPersisted = append(r.attemptsPersisted, attempts)
	if j, ok := r.jobs[jobUUID]; ok {
		for j.Attempts() < attempts {
			j.IncrementAttempts()
		}
	}
	return nil
}

func (r *fakeJobRepo) RecordView(_ context.Context, _ string) error { return nil }

func (r *fakeJobRepo) UpdateOutputURL(_ context.Context, _, _ string) error { return nil }

func (r *fakeJobRepo) QueryExpiredJobs(_ context.Context, now time.Time, limit int) ([]*entity.GiftVideoJobEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.GiftVideoJobEntity
	for _, j := range r.jobs {
		if j.OutputPath() != "" && j.ExpiresAt() != nil && !j.ExpiresAt().After(now) && len(out) < limit {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) ScrubJob(_ context.Context, jobUUID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scrubErr != nil {
		return false, r.scrubErr
	}
	j, ok := r.jobs[jobUUID]
	if !ok || j.OutputPath() == "" {
		return false, nil
	}
	j.Scrub()
	return true, nil
}

func (r *fakeJobRepo) QueryStuckProcessing(_ context.Context, _ time.Time, limit int) ([]*entity.GiftVideoJobEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.GiftVideoJobEntity
	for _, j := range r.jobs {
		if j.Status() == vo.JobStatusProcessing && len(out) < limit {
			out = append(out, j)
		}
	}
	return out, nil
}

// fakeStorage 记录上传和删除调用的存储网关
type fakeStorage struct {
	mu            sync.Mutex
	uploads       []string
	deleted       []string
	uploadErrs    []error // 逐次消费，用尽后成功
	downloadErrs  map[string]error
	downloadBlips map[string]int // 每个Key先失败N次再成功
	deleteErrs    map[string]error
	downloads     map[string]int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		downloadErrs:  make(map[string]error),
		downloadBlips: make(map[string]int),
		deleteErrs:    make(map[string]error),
		downloads:     make(map[string]int),
	}
}

func (s *fakeStorage) UploadFile(_ context.Context, _, objectKey, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.uploadErrs) > 0 {
		err := s.uploadErrs[0]
		s.uploadErrs = s.uploadErrs[1:]
		if err != nil {
			return "", err
		}
	}
	s.uploads = append(s.uploads, objectKey)
	return objectKey, nil
}

func (s *fakeStorage) DownloadFile(_ context.Context, objectKey, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads[objectKey]++
	if n := s.downloadBlips[objectKey]; n > 0 {
		s.downloadBlips[objectKey] = n - 1
		return errBoom
	}
	return s.downloadErrs[objectKey]
}

func (s *fakeStorage) SignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.example.com/" + objectKey + "?sig=abc", nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deleteErrs[objectKey]; err != nil {
		return err
	}
	s.deleted = append(s.deleted, objectKey)
	return nil
}

// fakeEngine 按预设错误序列响应的渲染引擎
type fakeEngine struct {
	mu    sync.Mutex
	calls int
	errs  []error // 逐次消费，用尽后成功
}

func (e *fakeEngine) Render(_ context.Context, _ gateway.RenderRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if len(e.errs) > 0 {
		err := e.errs[0]
		e.errs = e.errs[1:]
		return err
	}
	return nil
}

func (e *fakeEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// fakeSender 可按收件人定制结果的消息网关
type fakeSender struct {
	mu       sync.Mutex
	sent     []gateway.OutboundMessage
	states   map[string]vo.SendState
	sendErrs map[string]error
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		states:   make(map[string]vo.SendState),
		sendErrs: make(map[string]error),
	}
}

func (f *fakeSender) Send(_ context.Context, msg gateway.OutboundMessage) (vo.SendState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if err := f.sendErrs[msg.Recipient]; err != nil {
		return vo.SendStateFailed, err
	}
	if st, ok := f.states[msg.Recipient]; ok {
		return st, nil
	}
	return vo.SendStateSent, nil
}

var errBoom = errors.New("boom")

// testRetryPolicy 毫秒级退避，避免拖慢测试
func testRetryPolicy() vo.RetryPolicy {
	return vo.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
		Multiplier:  2,
	}
}
