package world

type IntentKind uint8

const (
	IntentIdle IntentKind = iota
	IntentMove
	IntentPickUp
	IntentDrop
)

func (k IntentKind) String() string {
	switch k {
	case IntentMove:
		return "MOVE"
	case IntentPickUp:
		return "PICK_UP"
	case IntentDrop:
		return "DROP"
	default:
		return "IDLE"
	}
}

// Intent is the single action a robot commits to for the current tick.
// Values are immutable; corrections build a new Intent.
type Intent struct {
	kind   IntentKind
	target Vec2i
}

func Idle() Intent              { return Intent{kind: IntentIdle} }
func MoveTo(p Vec2i) Intent     { return Intent{kind: IntentMove, target: p} }
func PickUpFrom(p Vec2i) Intent { return Intent{kind: IntentPickUp, target: p} }
func DropAt(p Vec2i) Intent     { return Intent{kind: IntentDrop, target: p} }

func (i Intent) Kind() IntentKind { return i.kind }
func (i Intent) Target() Vec2i    { return i.target }

func (i Intent) String() string {
	if i.kind == IntentIdle {
		return i.kind.String()
	}
	return i.kind.String() + i.target.String()
}

// clampedFrom returns a move limited to one orthogonal step from `from`, stepping along
// the axis with the larger offset (X on ties). Adjacent moves are returned unchanged.
func (i Intent) clampedFrom(from Vec2i) Intent {
	if i.kind != IntentMove {
		return i
	}
	dx := i.target.X - from.X
	dy := i.target.Y - from.Y
	if abs(dx)+abs(dy) == 1 {
		return i
	}
	step := from
	if abs(dx) >= abs(dy) {
		step.X += sign(dx)
	} else {
		step.Y += sign(dy)
	}
	return MoveTo(step)
}
