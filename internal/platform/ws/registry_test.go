package ws

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func testRegistry() *Registry {
	return NewRegistry(zerolog.New(os.Stderr))
}

func newTestSession(role Role, actorID uuid.UUID) *Session {
	return NewSession(uuid.New(), role, actorID, nil)
}

func TestRegister_Idempotent(t *testing.T) {
	r := testRegistry()
	doctorID := uuid.New()
	s := newTestSession(RoleDoctor, doctorID)

	r.Register(s)
	r.Register(s)

	room := RoomKey(RoleDoctor, doctorID)
	if got := r.RoomCount(room); got != 1 {
		t.Errorf("expected exactly one membership, got %d", got)
	}
	if got := r.SessionCount(); got != 1 {
		t.Errorf("expected one session, got %d", got)
	}
}

func TestUnregister_UnknownIDIsNoop(t *testing.T) {
	r := testRegistry()
	r.Unregister("does-not-exist")

	s := newTestSession(RolePatient, uuid.New())
	r.Register(s)
	r.Unregister(s.ID)
	r.Unregister(s.ID) // second call must not panic or double-close

	if got := r.SessionCount(); got != 0 {
		t.Errorf("expected zero sessions, got %d", got)
	}
}

func TestSessionsInRoom_MultiTab(t *testing.T) {
	r := testRegistry()
	doctorID := uuid.New()
	userID := uuid.New()

	tab1 := NewSession(userID, RoleDoctor, doctorID, nil)
	tab2 := NewSession(userID, RoleDoctor, doctorID, nil)
	r.Register(tab1)
	r.Register(tab2)

	room := RoomKey(RoleDoctor, doctorID)
	if got := len(r.SessionsInRoom(room)); got != 2 {
		t.Errorf("expected both tabs in room, got %d", got)
	}
}

func TestFanout_DeliversToEverySession(t *testing.T) {
	r := testRegistry()
	doctorID := uuid.New()
	s1 := newTestSession(RoleDoctor, doctorID)
	s2 := newTestSession(RoleDoctor, doctorID)
	r.Register(s1)
	r.Register(s2)

	room := RoomKey(RoleDoctor, doctorID)
	payload := map[string]string{"title": "Critical vitals"}
	if got := r.Fanout(room, payload); got != 2 {
		t.Fatalf("expected delivery to 2 sessions, got %d", got)
	}

	for _, s := range []*Session{s1, s2} {
		select {
		case data := <-s.Send():
			var decoded map[string]string
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("payload not valid JSON: %v", err)
			}
			if decoded["title"] != "Critical vitals" {
				t.Errorf("unexpected payload %v", decoded)
			}
		default:
			t.Error("expected payload queued on session")
		}
	}
}

func TestFanout_EmptyRoom(t *testing.T) {
	r := testRegistry()
	if got := r.Fanout(RoomKey(RoleDoctor, uuid.New()), "anything"); got != 0 {
		t.Errorf("expected zero deliveries, got %d", got)
	}
}

func TestFanout_FullBufferSkipsSession(t *testing.T) {
	r := testRegistry()
	doctorID := uuid.New()
	slow := newTestSession(RoleDoctor, doctorID)
	fast := newTestSession(RoleDoctor, doctorID)
	r.Register(slow)
	r.Register(fast)

	// Saturate the slow session's buffer.
	for i := 0; i < cap(slow.send); i++ {
		slow.send <- []byte("x")
	}

	room := RoomKey(RoleDoctor, doctorID)
	if got := r.Fanout(room, "payload"); got != 1 {
		t.Errorf("expected fanout to skip the saturated session, delivered %d", got)
	}
}

func TestFanout_IsolatedAcrossRooms(t *testing.T) {
	r := testRegistry()
	docA, docB := uuid.New(), uuid.New()
	sA := newTestSession(RoleDoctor, docA)
	sB := newTestSession(RoleDoctor, docB)
	r.Register(sA)
	r.Register(sB)

	r.Fanout(RoomKey(RoleDoctor, docA), "for A only")

	select {
	case <-sB.Send():
		t.Error("session in another room must not receive the payload")
	default:
	}
}

func TestParseRole(t *testing.T) {
	for _, ok := range []string{"patient", "doctor", "admin"} {
		if _, err := ParseRole(ok); err != nil {
			t.Errorf("ParseRole(%q) unexpected error: %v", ok, err)
		}
	}
	if _, err := ParseRole("nurse"); err == nil {
		t.Error("expected error for unknown role")
	}
}
