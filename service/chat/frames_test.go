package chat

import (
	"encoding/json"
	"testing"
)

func TestParseAuthFrame(t *testing.T) {
	raw := []byte(`{"type":"auth","payload":{"token":"abc","device_id":"phone"}}`)
	f, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if f.Type != FrameAuth {
		t.Fatalf("type = %q, want auth", f.Type)
	}
	ap, err := ExtractAuthPayload(f)
	if err != nil {
		t.Fatalf("ExtractAuthPayload: %v", err)
	}
	if ap.Token != "abc" || ap.DeviceID != "phone" {
		t.Errorf("payload = %+v", ap)
	}
}

func TestParseTypingFrame(t *testing.T) {
	raw := []byte(`{"type":"typing","payload":{"to":"u2","state":"start"}}`)
	f, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	tp, err := ExtractTypingPayload(f)
	if err != nil {
		t.Fatalf("ExtractTypingPayload: %v", err)
	}
	if tp.To != "u2" || tp.State != "start" {
		t.Errorf("payload = %+v", tp)
	}
}

func TestParseFrameRejectsGarbage(t *testing.T) {
	if _, err := ParseFrame([]byte("not json")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEncodeEventShape(t *testing.T) {
	data, err := EncodeEvent(EventRequest, "u1")
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	var ef EventFrame
	if err := json.Unmarshal(data, &ef); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ef.Event != EventRequest || ef.Payload != "u1" || ef.Ts == 0 {
		t.Errorf("frame = %+v", ef)
	}
}
