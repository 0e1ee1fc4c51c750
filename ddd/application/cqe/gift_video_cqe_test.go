package cqe

import (
	"testing"

	"giftvideo-service/pkg/errno"
)

func TestSubmitGiftVideoReqValidate(t *testing.T) {
	base := SubmitGiftVideoReq{GiftUUID: "g", ChildUUID: "c", VideoPath: "videos/raw/a.mp4"}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name string
		mod  func(r *SubmitGiftVideoReq)
		want error
	}{
		{"missing gift uuid", func(r *SubmitGiftVideoReq) { r.GiftUUID = "" }, errno.ErrGiftUUIDRequired},
		{"missing child uuid", func(r *SubmitGiftVideoReq) { r.ChildUUID = "" }, errno.ErrChildUUIDRequired},
		{"missing video path", func(r *SubmitGiftVideoReq) { r.VideoPath = "" }, errno.ErrSourcePathRequired},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := base
			c.mod(&req)
			if err := req.Validate(); err != c.want {
				t.Errorf("got %v, want %v", err, c.want)
			}
		})
	}
}

func TestSubmitGiftVideoReqToEditSpec(t *testing.T) {
	req := SubmitGiftVideoReq{
		GiftUUID: "g", ChildUUID: "c", VideoPath: "p",
		Stickers:   []StickerReq{{ID: "star", X: 150, Y: -10, Scale: 5}},
		CustomText: "hi",
		FilterID:   "warm",
	}
	spec := req.ToEditSpec()
	if len(spec.Stickers) != 1 {
		t.Fatalf("stickers = %d", len(spec.Stickers))
	}
	// 越界值收敛而不是拒绝
	st := spec.Stickers[0]
	if st.X != 100 || st.Y != 0 || st.Scale != 2.0 {
		t.Errorf("sticker not normalized: %+v", st)
	}
	if spec.CustomTextPosition != "bottom" || spec.CustomTextColor != "white" {
		t.Errorf("text defaults not applied: %+v", spec)
	}
}

func TestNotifyReqValidate(t *testing.T) {
	valid := NotifyReq{JobUUID: "j", Channel: "email", Recipients: "a@x.com"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	if err := (&NotifyReq{Channel: "email", Recipients: "a@x.com"}).Validate(); err != errno.ErrJobUUIDRequired {
		t.Errorf("missing job uuid: %v", err)
	}
	if err := (&NotifyReq{JobUUID: "j", Channel: "fax", Recipients: "a@x.com"}).Validate(); err != errno.ErrUnsupportedChannel {
		t.Errorf("bad channel: %v", err)
	}
	if err := (&NotifyReq{JobUUID: "j", Channel: "sms", Recipients: " , "}).Validate(); err != errno.ErrRecipientsRequired {
		t.Errorf("empty recipients: %v", err)
	}
}
