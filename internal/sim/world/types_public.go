package world

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

// TickLogEntry is one line of the tick log. Run is set on tick 0 only so a log can be
// replayed from its own header.
type TickLogEntry struct {
	Tick     uint64           `json:"tick"`
	Run      *RunInfo         `json:"run,omitempty"`
	Intents  []RecordedIntent `json:"intents"`
	Moves    int              `json:"moves"`
	Complete bool             `json:"complete"`
	Digest   string           `json:"digest"`
}

// RunInfo carries the effective configuration of a run.
type RunInfo struct {
	RunID  string `json:"run_id"`
	Config Config `json:"config"`
}

type RecordedIntent struct {
	Robot   Color  `json:"robot"`
	Kind    string `json:"kind"`
	Target  [2]int `json:"target"`
	Applied bool   `json:"applied"`
}

type AuditEntry struct {
	Tick   uint64 `json:"tick"`
	Actor  Color  `json:"actor"`
	Action string `json:"action"` // MOVE, PICK_UP or DROP
	From   [2]int `json:"from"`
	To     [2]int `json:"to"`
	Jewel  int    `json:"jewel,omitempty"`
}
