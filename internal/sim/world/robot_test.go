package world

import (
	"reflect"
	"testing"
)

func TestSense_ZoneRespectsBoundaries(t *testing.T) {
	w := newLayoutWorld(t, 3, 3, Layout{Robots: []Placement{place(Red, 0, 0)}})
	r := w.Robot(Red)
	r.Sense(w)

	z := r.Zone()
	if _, ok := z.Neighbor(West); ok {
		t.Fatalf("west of (0,0) must be absent")
	}
	if _, ok := z.Neighbor(South); ok {
		t.Fatalf("south of (0,0) must be absent")
	}
	if c, ok := z.Neighbor(North); !ok || c.Pos != (Vec2i{X: 0, Y: 1}) {
		t.Fatalf("north neighbor wrong: %v %v", c, ok)
	}
	if c, ok := z.Neighbor(East); !ok || c.Pos != (Vec2i{X: 1, Y: 0}) {
		t.Fatalf("east neighbor wrong: %v %v", c, ok)
	}
	if _, ok := z.Neighbor(NoDirection); ok {
		t.Fatalf("NoDirection must have no neighbor")
	}
}

func TestSense_RecordsNeighborsButNotSelf(t *testing.T) {
	w := newLayoutWorld(t, 3, 3, Layout{
		Robots:  []Placement{place(Red, 1, 1)},
		Jewels:  []Placement{place(Blue, 1, 2)},
		Targets: []Placement{place(Green, 2, 1)},
	})
	r := w.Robot(Red)
	r.Sense(w)

	k := r.Knowledge()
	if _, ok := k.At(Vec2i{X: 1, Y: 1}); ok {
		t.Fatalf("own cell must not be recorded")
	}
	if k.Known() != 4 {
		t.Fatalf("known=%d want 4", k.Known())
	}
	north, _ := k.At(Vec2i{X: 1, Y: 2})
	if north.State != CellJewel || north.JewelColor != Blue {
		t.Fatalf("north snapshot wrong: %+v", north)
	}
	east, _ := k.At(Vec2i{X: 2, Y: 1})
	if east.Target != Green || east.State != CellFree {
		t.Fatalf("east snapshot wrong: %+v", east)
	}

	// Snapshots go stale: a grid change is not reflected until re-observed.
	mustCell(t, w, 2, 1).placeJewel(&Jewel{ID: 99, Color: Red})
	if east, _ := k.At(Vec2i{X: 2, Y: 1}); east.State != CellFree {
		t.Fatalf("knowledge tracked the live grid")
	}
}

func TestSense_HeatMapLifecycle(t *testing.T) {
	w := newLayoutWorld(t, 3, 3, Layout{
		Robots: []Placement{place(Red, 1, 1)},
		Jewels: []Placement{place(Red, 1, 0)},
	})
	r := w.Robot(Red)
	if r.Heat() != nil {
		t.Fatalf("heat map must be created lazily")
	}
	r.Sense(w)
	if r.Heat() == nil || r.Heat().At(Vec2i{X: 1, Y: 1}) != 1 {
		t.Fatalf("heat map not seeded at own cell")
	}
	r.Heat().inc(Vec2i{X: 2, Y: 2})

	// Same goal: no reset.
	r.Sense(w)
	if r.Heat().At(Vec2i{X: 2, Y: 2}) != 1 {
		t.Fatalf("heat map reset without a goal change")
	}

	if got := r.Deliberate(); got != PickUpFrom(Vec2i{X: 1, Y: 0}) {
		t.Fatalf("intent=%v", got)
	}
	r.Act(w)
	r.Sense(w)
	if r.Goal() != GoalDeliver {
		t.Fatalf("goal=%v want deliver", r.Goal())
	}
	if r.Heat().At(Vec2i{X: 2, Y: 2}) != 0 || r.Heat().At(Vec2i{X: 1, Y: 1}) != 1 {
		t.Fatalf("heat map not reset on goal change")
	}
}

func TestDeliberate_DropOnAdjacentFreeTarget(t *testing.T) {
	w := newLayoutWorld(t, 3, 3, Layout{
		Robots:  []Placement{place(Red, 1, 1)},
		Jewels:  []Placement{place(Red, 0, 1)},
		Targets: []Placement{place(Green, 1, 2), place(Red, 2, 1)},
	})
	r := w.Robot(Red)
	r.Sense(w)
	r.Deliberate()
	r.Act(w)
	if !r.Carrying() {
		t.Fatalf("setup: pick up failed")
	}

	r.Sense(w)
	if got := r.Deliberate(); got != DropAt(Vec2i{X: 2, Y: 1}) {
		t.Fatalf("intent=%v want DROP(2,1)", got)
	}
}

func TestDeliberate_IgnoresCorrectAndForeignJewels(t *testing.T) {
	w := newLayoutWorld(t, 3, 3, Layout{
		Robots:  []Placement{place(Red, 1, 1)},
		Jewels:  []Placement{place(Red, 1, 2), place(Green, 1, 0), place(Red, 2, 1)},
		Targets: []Placement{place(Red, 1, 2), place(Blue, 2, 1)},
	})
	r := w.Robot(Red)
	r.Sense(w)
	// North holds a red jewel already on a red target, south a green jewel.
	// East holds a red jewel on a blue target, which is loose and must be picked up.
	if got := r.Deliberate(); got != PickUpFrom(Vec2i{X: 2, Y: 1}) {
		t.Fatalf("intent=%v want PICK_UP(2,1)", got)
	}
}

func TestDeliberate_HeadsTowardKnownGoal(t *testing.T) {
	w := newLayoutWorld(t, 5, 5, Layout{
		Robots: []Placement{place(Red, 2, 2)},
		Jewels: []Placement{place(Red, 4, 2)},
	})
	w.shared.observe(mustCell(t, w, 4, 2), 0)

	r := w.Robot(Red)
	r.Sense(w)
	if got := r.Deliberate(); got != MoveTo(Vec2i{X: 3, Y: 2}) {
		t.Fatalf("intent=%v want MOVE(3,2)", got)
	}
}

func TestDeliberate_HeatRepelsFromVisitedCells(t *testing.T) {
	w := newLayoutWorld(t, 5, 5, Layout{
		Robots: []Placement{place(Red, 2, 2)},
		Jewels: []Placement{place(Red, 4, 2)},
	})
	w.shared.observe(mustCell(t, w, 4, 2), 0)
	r := w.Robot(Red)
	r.Sense(w)
	// East is closest but hot: 1 + 2*3 = 7. The other neighbors score 3 and staying
	// scores 2 + 1*3 + 0.25, so any cool neighbor beats both.
	r.Heat().inc(Vec2i{X: 3, Y: 2})
	r.Heat().inc(Vec2i{X: 3, Y: 2})
	got := r.Deliberate()
	if got.Kind() != IntentMove {
		t.Fatalf("intent=%v want a move", got)
	}
	if tgt := got.Target(); tgt == (Vec2i{X: 3, Y: 2}) || Manhattan(tgt, Vec2i{X: 2, Y: 2}) != 1 {
		t.Fatalf("move target %v should be a cool neighbor", tgt)
	}
}

func TestDeliberate_RoamsToCoolestNeighbor(t *testing.T) {
	w := newLayoutWorld(t, 3, 3, Layout{Robots: []Placement{place(Red, 1, 1)}})
	r := w.Robot(Red)
	r.Sense(w)
	r.Heat().inc(Vec2i{X: 1, Y: 2})
	// North is warm; south is the first cool neighbor in scan order.
	if got := r.Deliberate(); got != MoveTo(Vec2i{X: 1, Y: 0}) {
		t.Fatalf("intent=%v want MOVE(1,0)", got)
	}
}

func TestIdle_WhenBoxedInAndActIsNoop(t *testing.T) {
	w := newLayoutWorld(t, 2, 1, Layout{
		Robots: []Placement{place(Red, 0, 0)},
		Jewels: []Placement{place(Green, 1, 0)},
	})
	r := w.Robot(Red)
	r.Sense(w)
	if got := r.Deliberate(); got != Idle() {
		t.Fatalf("intent=%v want IDLE", got)
	}
	before := w.Cells()
	res := r.Act(w)
	if res.Applied || res.Intent.Kind() != IntentIdle {
		t.Fatalf("idle act reported %+v", res)
	}
	if !reflect.DeepEqual(before, w.Cells()) || r.Moves() != 0 {
		t.Fatalf("idle act mutated the grid")
	}
}

func TestAct_ClampsNonAdjacentMove(t *testing.T) {
	w := newLayoutWorld(t, 5, 5, Layout{Robots: []Placement{place(Red, 0, 0)}})
	r := w.Robot(Red)
	r.intent = MoveTo(Vec2i{X: 3, Y: 1})
	res := r.Act(w)
	if !res.Applied || r.Pos() != (Vec2i{X: 1, Y: 0}) {
		t.Fatalf("clamped move landed at %v (applied=%v)", r.Pos(), res.Applied)
	}
	if res.Intent != MoveTo(Vec2i{X: 1, Y: 0}) {
		t.Fatalf("recorded intent %v", res.Intent)
	}
	if r.Intent() != Idle() {
		t.Fatalf("intent not cleared after act")
	}
	if r.Moves() != 1 || mustCell(t, w, 0, 0).State != CellFree || mustCell(t, w, 1, 0).Robot != r {
		t.Fatalf("move bookkeeping wrong")
	}
}

func TestAct_RejectsBlockedMove(t *testing.T) {
	w := newLayoutWorld(t, 3, 3, Layout{
		Robots: []Placement{place(Red, 0, 0)},
		Jewels: []Placement{place(Blue, 1, 0)},
	})
	r := w.Robot(Red)
	r.Sense(w)
	for _, target := range []Vec2i{{X: 1, Y: 0}, {X: -1, Y: 0}} {
		r.intent = MoveTo(target)
		if res := r.Act(w); res.Applied {
			t.Fatalf("move to %v should be rejected", target)
		}
	}
	if r.Pos() != (Vec2i{}) || r.Moves() != 0 || r.Heat().At(Vec2i{}) != 1 {
		t.Fatalf("rejected moves changed state")
	}
}

func TestPickUpDrop_RoundTrip(t *testing.T) {
	w := newLayoutWorld(t, 3, 3, Layout{
		Robots:  []Placement{place(Red, 1, 1)},
		Jewels:  []Placement{place(Red, 1, 0)},
		Targets: []Placement{place(Red, 2, 1)},
	})
	r := w.Robot(Red)
	j := w.jewels[0]

	r.intent = PickUpFrom(Vec2i{X: 1, Y: 0})
	if res := r.Act(w); !res.Applied || res.Jewel != j.ID {
		t.Fatalf("pick up failed: %+v", res)
	}
	if !r.Carrying() || !j.Carried() || mustCell(t, w, 1, 0).State != CellFree {
		t.Fatalf("pick up bookkeeping wrong")
	}

	r.intent = PickUpFrom(Vec2i{X: 1, Y: 0})
	if res := r.Act(w); res.Applied {
		t.Fatalf("second pick up must be rejected")
	}

	r.intent = DropAt(Vec2i{X: 2, Y: 1})
	if res := r.Act(w); !res.Applied {
		t.Fatalf("drop failed")
	}
	c := mustCell(t, w, 2, 1)
	if r.Carrying() || j.Carried() || c.State != CellJewel || c.Jewel != j || !c.Correct {
		t.Fatalf("drop bookkeeping wrong: %+v", c)
	}
	if j.Pos != (Vec2i{X: 2, Y: 1}) {
		t.Fatalf("jewel pos=%v", j.Pos)
	}
	if !w.CheckCompletion() {
		t.Fatalf("world should be complete")
	}
}

func TestPickUpDrop_RejectsMismatches(t *testing.T) {
	w := newLayoutWorld(t, 3, 3, Layout{
		Robots:  []Placement{place(Red, 1, 1)},
		Jewels:  []Placement{place(Green, 1, 0), place(Red, 0, 1)},
		Targets: []Placement{place(Blue, 2, 1), place(Red, 1, 2), place(Red, 1, 0)},
	})
	r := w.Robot(Red)

	r.intent = PickUpFrom(Vec2i{X: 1, Y: 0})
	if r.Act(w).Applied {
		t.Fatalf("picked up a foreign jewel")
	}
	r.intent = DropAt(Vec2i{X: 1, Y: 2})
	if r.Act(w).Applied {
		t.Fatalf("dropped without carrying")
	}

	r.intent = PickUpFrom(Vec2i{X: 0, Y: 1})
	if !r.Act(w).Applied {
		t.Fatalf("setup pick up failed")
	}
	r.intent = DropAt(Vec2i{X: 2, Y: 1})
	if r.Act(w).Applied {
		t.Fatalf("dropped onto a foreign target")
	}
	r.intent = DropAt(Vec2i{X: 1, Y: 0})
	if r.Act(w).Applied {
		t.Fatalf("dropped onto an occupied cell")
	}
}
