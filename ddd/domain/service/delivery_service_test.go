package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"giftvideo-service/ddd/domain/entity"
	"giftvideo-service/ddd/domain/vo"
)

func newNotifiableJob(t *testing.T) *entity.GiftVideoJobEntity {
	t.Helper()
	job := entity.NewGiftVideoJobEntity("gift-1", "child-1", "videos/raw/in.mp4", vo.EditSpec{}, 24)
	job.SetStatus(vo.JobStatusProcessing)
	job.AttachOutput("gift-videos/composited/x/1.mp4", time.Now().Add(24*time.Hour))
	return job
}

func TestDeliverEmailAllSent(t *testing.T) {
	job := newNotifiableJob(t)
	email := newFakeSender()
	svc := NewDeliveryService(newFakeJobRepo(job), email, newFakeSender(), "https://gifts.example.com/")

	res, err := svc.Deliver(context.Background(), DeliveryCommand{
		JobUUID:       job.JobUUID(),
		Channel:       vo.ChannelEmail,
		Recipients:    "grandma@x.com, grandpa@x.com",
		RecipientName: "Grandma",
		ChildName:     "Mia",
		GiftName:      "a bike",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if res.Outcome != vo.DeliveryAllSent {
		t.Errorf("outcome = %v, want all_sent", res.Outcome)
	}
	if len(email.sent) != 2 {
		t.Fatalf("sent = %d messages, want 2", len(email.sent))
	}

	msg := email.sent[0]
	if msg.Subject != "A video message from Mia" {
		t.Errorf("subject = %q", msg.Subject)
	}
	// 消息里必须是追踪链接而不是存储地址
	wantLink := "https://gifts.example.com/track-video-view/" + job.TrackingToken()
	if !strings.Contains(msg.Body, wantLink) {
		t.Errorf("body %q missing tracking link %q", msg.Body, wantLink)
	}
	if strings.Contains(msg.Body, "[") {
		t.Errorf("default template placeholders not fully substituted: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Grandma") || !strings.Contains(msg.Body, "a bike") {
		t.Errorf("body missing substituted values: %q", msg.Body)
	}
}

func TestDeliverPartialFailure(t *testing.T) {
	job := newNotifiableJob(t)
	email := newFakeSender()
	email.sendErrs["bad@x.com"] = errBoom
	svc := NewDeliveryService(newFakeJobRepo(job), email, newFakeSender(), "https://gifts.example.com")

	res, err := svc.Deliver(context.Background(), DeliveryCommand{
		JobUUID:    job.JobUUID(),
		Channel:    vo.ChannelEmail,
		Recipients: "ok@x.com,bad@x.com,also-ok@x.com",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if res.Outcome != vo.DeliveryPartial {
		t.Errorf("outcome = %v, want partial", res.Outcome)
	}
	if len(res.Recipients) != 3 {
		t.Fatalf("recipients = %d, want 3", len(res.Recipients))
	}
	for _, rr := range res.Recipients {
		wantOK := rr.Recipient != "bad@x.com"
		if rr.Success != wantOK {
			t.Errorf("recipient %s success = %v", rr.Recipient, rr.Success)
		}
	}
}

func TestDeliverSMSUnknownStateCountsAsSent(t *testing.T) {
	job := newNotifiableJob(t)
	sms := newFakeSender()
	sms.states["+15551234567"] = vo.SendStateUnknown
	svc := NewDeliveryService(newFakeJobRepo(job), newFakeSender(), sms, "https://gifts.example.com")

	res, err := svc.Deliver(context.Background(), DeliveryCommand{
		JobUUID:    job.JobUUID(),
		Channel:    vo.ChannelSMS,
		Recipients: "+15551234567",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if res.Outcome != vo.DeliveryAllSent {
		t.Errorf("outcome = %v, want all_sent for unknown sms state", res.Outcome)
	}
	if sms.sent[0].Subject != "" {
		t.Errorf("sms should carry no subject, got %q", sms.sent[0].Subject)
	}
}

func TestDeliverCustomTemplateKeepsUnknownPlaceholders(t *testing.T) {
	job := newNotifiableJob(t)
	email := newFakeSender()
	svc := NewDeliveryService(newFakeJobRepo(job), email, newFakeSender(), "https://gifts.example.com")

	_, err := svc.Deliver(context.Background(), DeliveryCommand{
		JobUUID:       job.JobUUID(),
		Channel:       vo.ChannelEmail,
		Recipients:    "a@x.com",
		RecipientName: "Bob",
		Template:      "Hey [name], [mystery_tag] watch: [video_link]",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	body := email.sent[0].Body
	if !strings.Contains(body, "Hey Bob") {
		t.Errorf("known placeholder not substituted: %q", body)
	}
	if !strings.Contains(body, "[mystery_tag]") {
		t.Errorf("unknown placeholder must be kept verbatim: %q", body)
	}
}

func TestDeliverValidation(t *testing.T) {
	job := newNotifiableJob(t)
	repo := newFakeJobRepo(job)
	svc := NewDeliveryService(repo, newFakeSender(), newFakeSender(), "https://gifts.example.com")
	ctx := context.Background()

	if _, err := svc.Deliver(ctx, DeliveryCommand{JobUUID: job.JobUUID(), Channel: "pigeon", Recipients: "a@x.com"}); err == nil {
		t.Error("unsupported channel should fail")
	}
	if _, err := svc.Deliver(ctx, DeliveryCommand{JobUUID: job.JobUUID(), Channel: vo.ChannelEmail, Recipients: " , "}); err == nil {
		t.Error("empty recipients should fail")
	}
	if _, err := svc.Deliver(ctx, DeliveryCommand{JobUUID: "nope", Channel: vo.ChannelEmail, Recipients: "a@x.com"}); err == nil {
		t.Error("unknown job should fail")
	}
}

func TestDeliverJobNotReady(t *testing.T) {
	job := entity.NewGiftVideoJobEntity("gift-1", "child-1", "videos/raw/in.mp4", vo.EditSpec{}, 24)
	email := newFakeSender()
	svc := NewDeliveryService(newFakeJobRepo(job), email, newFakeSender(), "https://gifts.example.com")

	_, err := svc.Deliver(context.Background(), DeliveryCommand{
		JobUUID:    job.JobUUID(),
		Channel:    vo.ChannelEmail,
		Recipients: "a@x.com",
	})
	if err == nil {
		t.Fatal("pending job should not be deliverable")
	}
	if len(email.sent) != 0 {
		t.Error("nothing should be sent for a job that is not ready")
	}
}
