package observerproto

// Version is the observer protocol version.
const Version = "1.0"

// GridEncoding names the TICK grid payload format: base64 of (code, run) uvarint pairs over
// packed cell codes in x-major order (index = x*height + y).
const GridEncoding = "RLE_CELL8"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeTick      = "TICK"
)

// Client -> Server. First message on the observer WS connection.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// Send one TICK every N world ticks (0 or 1 means every tick).
	EveryTicks int `json:"every_ticks,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	RunID           string      `json:"run_id"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Seed           int64   `json:"seed"`
	TickIntervalMS int64   `json:"tick_interval_ms"`
	HeatWeight     float64 `json:"heat_weight"`
	StayPenalty    float64 `json:"stay_penalty"`
	Knowledge      string  `json:"knowledge"`
	Jewels         [3]int  `json:"jewels"`
}

// Server -> Client. Sent after every (subscribed) tick.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`

	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Encoding string `json:"encoding"`
	Grid     string `json:"grid"`

	Robots  []RobotState `json:"robots"`
	Intents []IntentInfo `json:"intents,omitempty"`
	Audits  []AuditEntry `json:"audits,omitempty"`

	Complete   bool   `json:"complete"`
	TotalMoves int    `json:"total_moves"`
	Digest     string `json:"digest"`
}

type RobotState struct {
	Color    string `json:"color"`
	Pos      [2]int `json:"pos"`
	Carrying string `json:"carrying,omitempty"`
	Goal     string `json:"goal"`
	Moves    int    `json:"moves"`
}

type IntentInfo struct {
	Robot  string `json:"robot"`
	Kind   string `json:"kind"`
	Target [2]int `json:"target"`
}

type AuditEntry struct {
	Tick   uint64 `json:"tick"`
	Actor  string `json:"actor"`
	Action string `json:"action"`
	From   [2]int `json:"from"`
	To     [2]int `json:"to"`
	Jewel  int    `json:"jewel,omitempty"`
}

// Cell code layout (one byte per cell):
//
//	bits 0-1 occupancy state (0 free, 1 jewel, 2 robot)
//	bits 2-3 target color    (0 none, 1 R, 2 G, 3 B)
//	bits 4-5 occupant color
//	bit  6   correct
type Cell struct {
	State    uint8
	Target   uint8
	Occupant uint8
	Correct  bool
}

func PackCell(c Cell) uint8 {
	v := c.State&3 | (c.Target&3)<<2 | (c.Occupant&3)<<4
	if c.Correct {
		v |= 1 << 6
	}
	return v
}

func UnpackCell(v uint8) Cell {
	return Cell{
		State:    v & 3,
		Target:   (v >> 2) & 3,
		Occupant: (v >> 4) & 3,
		Correct:  v&(1<<6) != 0,
	}
}
