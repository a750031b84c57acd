package tuning

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"jewelbots.ai/internal/sim/world"
)

type Tuning struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Jewels Jewels `yaml:"jewels"`

	// Negative seeds are replaced with a time-based seed when the world is built.
	Seed int64 `yaml:"seed"`

	HeatWeight  float64 `yaml:"heat_weight"`
	StayPenalty float64 `yaml:"stay_penalty"`
	Knowledge   string  `yaml:"knowledge"`

	TickIntervalMS  int    `yaml:"tick_interval_ms"`
	MaxTicks        uint64 `yaml:"max_ticks"`
	StopOnComplete  bool   `yaml:"stop_on_complete"`
	FrameEveryTicks uint64 `yaml:"frame_every_ticks"`

	Layout *Layout `yaml:"layout,omitempty"`
}

type Jewels struct {
	Red   int `yaml:"red"`
	Green int `yaml:"green"`
	Blue  int `yaml:"blue"`
}

// Layout hand-places robots, jewels and targets. Colors are "R", "G" or "B".
type Layout struct {
	Robots  []Placement `yaml:"robots"`
	Jewels  []Placement `yaml:"jewels"`
	Targets []Placement `yaml:"targets"`
}

type Placement struct {
	Color string `yaml:"color"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
}

// Defaults matches the classic 7x7 board: three jewels per color, 250ms ticks and a
// 30 second budget.
func Defaults() Tuning {
	return Tuning{
		Width:           7,
		Height:          7,
		Jewels:          Jewels{Red: 3, Green: 3, Blue: 3},
		Seed:            -1,
		HeatWeight:      world.DefaultHeatWeight,
		StayPenalty:     world.DefaultStayPenalty,
		Knowledge:       string(world.KnowledgeShared),
		TickIntervalMS:  250,
		MaxTicks:        120,
		StopOnComplete:  true,
		FrameEveryTicks: 10,
	}
}

// Load reads a tuning file on top of Defaults(); keys missing from the file keep their
// default values.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", t.Width, t.Height)
	}
	if t.Jewels.Red < 0 || t.Jewels.Green < 0 || t.Jewels.Blue < 0 {
		return errors.New("jewel counts must be non-negative")
	}
	if t.TickIntervalMS < 0 {
		return fmt.Errorf("tick_interval_ms must be non-negative, got %d", t.TickIntervalMS)
	}
	if _, err := world.ParseKnowledgeMode(t.Knowledge); err != nil {
		return err
	}
	if t.Layout != nil {
		if _, err := t.Layout.world(); err != nil {
			return err
		}
	}
	return nil
}

// WorldConfig converts the tuning into a world config. World-level validation (grid
// capacity, overlaps) happens in world.New.
func (t Tuning) WorldConfig() (world.Config, error) {
	mode, err := world.ParseKnowledgeMode(t.Knowledge)
	if err != nil {
		return world.Config{}, err
	}
	cfg := world.Config{
		Width:           t.Width,
		Height:          t.Height,
		RedJewels:       t.Jewels.Red,
		GreenJewels:     t.Jewels.Green,
		BlueJewels:      t.Jewels.Blue,
		Seed:            t.Seed,
		HeatWeight:      t.HeatWeight,
		StayPenalty:     t.StayPenalty,
		Knowledge:       mode,
		TickInterval:    time.Duration(t.TickIntervalMS) * time.Millisecond,
		MaxTicks:        t.MaxTicks,
		StopOnComplete:  t.StopOnComplete,
		FrameEveryTicks: t.FrameEveryTicks,
	}
	if t.Layout != nil {
		l, err := t.Layout.world()
		if err != nil {
			return world.Config{}, err
		}
		cfg.Layout = l
	}
	return cfg, nil
}

func (l *Layout) world() (*world.Layout, error) {
	conv := func(kind string, in []Placement) ([]world.Placement, error) {
		out := make([]world.Placement, 0, len(in))
		for i, p := range in {
			c, err := world.ParseColor(p.Color)
			if err != nil {
				return nil, fmt.Errorf("layout %s[%d]: %w", kind, i, err)
			}
			if !c.Valid() {
				return nil, fmt.Errorf("layout %s[%d]: color is required", kind, i)
			}
			out = append(out, world.Placement{Color: c, X: p.X, Y: p.Y})
		}
		return out, nil
	}
	robots, err := conv("robots", l.Robots)
	if err != nil {
		return nil, err
	}
	jewels, err := conv("jewels", l.Jewels)
	if err != nil {
		return nil, err
	}
	targets, err := conv("targets", l.Targets)
	if err != nil {
		return nil, err
	}
	return &world.Layout{Robots: robots, Jewels: jewels, Targets: targets}, nil
}
