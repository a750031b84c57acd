package observerproto

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPackCell_RoundTrip(t *testing.T) {
	for state := uint8(0); state < 3; state++ {
		for target := uint8(0); target < 4; target++ {
			for occ := uint8(0); occ < 4; occ++ {
				for _, correct := range []bool{false, true} {
					in := Cell{State: state, Target: target, Occupant: occ, Correct: correct}
					if got := UnpackCell(PackCell(in)); got != in {
						t.Fatalf("round trip %+v -> %+v", in, got)
					}
				}
			}
		}
	}
}

func TestValidateSubscribe(t *testing.T) {
	ok := `{"type":"SUBSCRIBE","protocol_version":"1.0","every_ticks":2}`
	if err := ValidateSubscribe([]byte(ok)); err != nil {
		t.Fatalf("valid subscribe rejected: %v", err)
	}
	for _, bad := range []string{
		`{"type":"HELLO","protocol_version":"1.0"}`,
		`{"type":"SUBSCRIBE"}`,
		`{"type":"SUBSCRIBE","protocol_version":"1.0","every_ticks":-1}`,
		`{"type":"SUBSCRIBE","protocol_version":"1.0","chunk_radius":4}`,
		`not json`,
	} {
		if err := ValidateSubscribe([]byte(bad)); err == nil {
			t.Fatalf("expected rejection for %s", bad)
		}
	}
}

func TestValidateTick(t *testing.T) {
	msg := TickMsg{
		Type:            "TICK",
		ProtocolVersion: Version,
		Tick:            3,
		Width:           3,
		Height:          3,
		Encoding:        GridEncoding,
		Grid:            "AAk=",
		Robots:          []RobotState{{Color: "R", Pos: [2]int{0, 1}, Carrying: "R", Goal: "deliver", Moves: 1}},
		Intents:         []IntentInfo{{Robot: "R", Kind: "MOVE", Target: [2]int{1, 1}}},
		Audits:          []AuditEntry{{Tick: 3, Actor: "R", Action: "MOVE", From: [2]int{0, 1}, To: [2]int{1, 1}}},
		TotalMoves:      1,
		Digest:          strings.Repeat("ab", 32),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := ValidateTick(b); err != nil {
		t.Fatalf("valid tick rejected: %v", err)
	}

	msg.Robots[0].Color = "X"
	b, _ = json.Marshal(msg)
	if err := ValidateTick(b); err == nil {
		t.Fatalf("expected rejection for bad robot color")
	}
}
