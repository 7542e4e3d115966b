package models

import (
	"errors"
	"testing"
)

func TestDecodeSignal(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name: "valid join",
			data: `{"type":"join","room":"x","sender":"alice"}`,
		},
		{
			name: "valid offer",
			data: `{"type":"offer","room":"x","payload":{"sdp":"O1"}}`,
		},
		{
			name: "valid candidate with epoch",
			data: `{"type":"candidate","room":"x","epoch":2,"payload":{"cand":"C1"}}`,
		},
		{
			name:    "not json",
			data:    `{"type":`,
			wantErr: ErrUnparseable,
		},
		{
			name:    "missing type",
			data:    `{"room":"x"}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "missing room",
			data:    `{"type":"join","sender":"alice"}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "join without sender",
			data:    `{"type":"join","room":"x"}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "answer without payload",
			data:    `{"type":"answer","room":"x"}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "unknown kind",
			data:    `{"type":"hangup","room":"x"}`,
			wantErr: ErrUnknownKind,
		},
		{
			name:    "server-only kind from client",
			data:    `{"type":"peer-present","room":"x"}`,
			wantErr: ErrUnknownKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeSignal([]byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.Room != "x" {
				t.Fatalf("unexpected room %q", msg.Room)
			}
		})
	}
}

func TestDecodeSignalKeepsPayloadOpaque(t *testing.T) {
	raw := `{"type":"offer","room":"x","payload":{"sdp":"O1","weird":[1,null,{"a":"b"}]}}`
	msg, err := DecodeSignal([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(msg.Payload) != `{"sdp":"O1","weird":[1,null,{"a":"b"}]}` {
		t.Fatalf("payload was not passed through untouched: %s", msg.Payload)
	}
}

func TestNotificationShapes(t *testing.T) {
	pp := NewPeerPresent("x", 3, 2, "alice")
	if pp.Epoch == nil || *pp.Epoch != 3 {
		t.Fatal("peer-present must carry the room epoch")
	}
	if string(pp.Payload) != `{"count":2,"offererId":"alice"}` {
		t.Fatalf("unexpected presence payload %s", pp.Payload)
	}

	mr := NewMomentReady("x", 3)
	if mr.Type != SignalKindMomentReady || string(mr.Payload) != `{}` {
		t.Fatalf("unexpected moment-ready %+v", mr)
	}

	rc := NewRoomClosed("x", 3)
	if rc.Type != SignalKindRoomClosed || rc.Room != "x" {
		t.Fatalf("unexpected room-closed %+v", rc)
	}
}
