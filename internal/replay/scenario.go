// Package replay drives a tracker through scripted hand motion and reports
// what it decided.
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/bladeguard/internal/core/systems/physics"
	"github.com/zeusync/bladeguard/internal/tracker"
)

var (
	ErrEmptyScenario   = errors.New("scenario has no ticks or keyframes")
	ErrInvalidScenario = errors.New("invalid scenario")
)

const defaultTickRate = 90

// Scenario is a keyframed recording of both hands.
type Scenario struct {
	Name      string       `yaml:"name"`
	TickRate  float64      `yaml:"tick_rate"`
	Ticks     int          `yaml:"ticks"`
	Heading   float64      `yaml:"heading"`
	Keyframes []Keyframe   `yaml:"keyframes"`
	Flags     []FlagSpan   `yaml:"flags"`
	Expect    *Expectation `yaml:"expect,omitempty"`
}

// Keyframe pins both hands at a tick. A nil hand holds nothing.
type Keyframe struct {
	Tick  int       `yaml:"tick"`
	Left  *HandPose `yaml:"left"`
	Right *HandPose `yaml:"right"`
}

type HandPose struct {
	Item      string     `yaml:"item"`
	Reach     float64    `yaml:"reach"`
	Position  [3]float64 `yaml:"position"`
	Direction [3]float64 `yaml:"direction"`
	// Grabbed holds the weapon as a grabbed body instead of equipping it.
	Grabbed bool `yaml:"grabbed"`
	// Unresolved simulates a weapon whose node the host cannot find.
	Unresolved bool `yaml:"unresolved"`
}

// FlagSpan sets host flags for ticks From..To inclusive.
type FlagSpan struct {
	From             int  `yaml:"from"`
	To               int  `yaml:"to"`
	CloseCombat      bool `yaml:"close_combat"`
	TriggerHeld      bool `yaml:"trigger_held"`
	OffHandCooldown  bool `yaml:"off_hand_cooldown"`
	EquipmentChanged bool `yaml:"equipment_changed"`
}

// Expectation lists call counts a replay must reproduce. Nil entries are
// not checked.
type Expectation struct {
	CollisionStarts *int `yaml:"collision_starts"`
	Imminents       *int `yaml:"imminents"`
	Unequips        *int `yaml:"unequips"`
	BlockStarts     *int `yaml:"block_starts"`
	BlockStops      *int `yaml:"block_stops"`
}

// LoadScenario decodes and validates a YAML scenario.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyScenario
		}
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.normalize(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	s, err := LoadScenario(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

func (s *Scenario) normalize() error {
	if s.Ticks <= 0 || len(s.Keyframes) == 0 {
		return ErrEmptyScenario
	}
	if s.TickRate == 0 {
		s.TickRate = defaultTickRate
	}
	if s.TickRate < 0 {
		return fmt.Errorf("%w: tick_rate %g", ErrInvalidScenario, s.TickRate)
	}
	sort.SliceStable(s.Keyframes, func(i, j int) bool { return s.Keyframes[i].Tick < s.Keyframes[j].Tick })
	for i := 1; i < len(s.Keyframes); i++ {
		if s.Keyframes[i].Tick == s.Keyframes[i-1].Tick {
			return fmt.Errorf("%w: duplicate keyframe at tick %d", ErrInvalidScenario, s.Keyframes[i].Tick)
		}
	}
	for _, f := range s.Flags {
		if f.To < f.From {
			return fmt.Errorf("%w: flag span %d..%d", ErrInvalidScenario, f.From, f.To)
		}
	}
	return nil
}

// DeltaTime is the fixed tick length in seconds.
func (s *Scenario) DeltaTime() float64 { return 1 / s.TickRate }

// Frames expands the keyframes into one tracker frame per tick.
func (s *Scenario) Frames() []tracker.Frame {
	frames := make([]tracker.Frame, s.Ticks)
	for i := range frames {
		k0, k1, alpha := s.bracket(i)
		f := tracker.Frame{
			DeltaTime: s.DeltaTime(),
			Heading:   s.Heading,
			Left:      interpolate(k0.Left, hand(k1, true), alpha),
			Right:     interpolate(k0.Right, hand(k1, false), alpha),
		}
		for _, span := range s.Flags {
			if i < span.From || i > span.To {
				continue
			}
			f.CloseCombat = f.CloseCombat || span.CloseCombat
			f.TriggerHeld = f.TriggerHeld || span.TriggerHeld
			f.OffHandCooldown = f.OffHandCooldown || span.OffHandCooldown
			f.EquipmentChanged = f.EquipmentChanged || (span.EquipmentChanged && i == span.From)
		}
		frames[i] = f
	}
	return frames
}

// bracket finds the keyframes around tick and how far between them it is.
func (s *Scenario) bracket(tick int) (Keyframe, *Keyframe, float64) {
	idx := sort.Search(len(s.Keyframes), func(i int) bool { return s.Keyframes[i].Tick > tick })
	if idx == 0 {
		return s.Keyframes[0], nil, 0
	}
	k0 := s.Keyframes[idx-1]
	if idx == len(s.Keyframes) {
		return k0, nil, 0
	}
	k1 := &s.Keyframes[idx]
	return k0, k1, float64(tick-k0.Tick) / float64(k1.Tick-k0.Tick)
}

func hand(k *Keyframe, left bool) *HandPose {
	if k == nil {
		return nil
	}
	if left {
		return k.Left
	}
	return k.Right
}

func interpolate(from, to *HandPose, alpha float64) tracker.HandInput {
	if from == nil {
		return tracker.HandInput{}
	}
	pos := mgl64.Vec3(from.Position)
	dir := mgl64.Vec3(from.Direction)
	if to != nil && to.Item == from.Item && to.Grabbed == from.Grabbed && alpha > 0 {
		pos = physics.Lerp(pos, mgl64.Vec3(to.Position), alpha)
		dir = physics.Lerp(dir, mgl64.Vec3(to.Direction), alpha)
	}
	transform := physics.TransformFromDirection(pos, dir)

	if from.Grabbed {
		return tracker.HandInput{Grabbed: &tracker.Body{Transform: transform, Reach: from.Reach, ItemID: from.Item}}
	}
	in := tracker.HandInput{Equipped: true, ItemID: from.Item, Reach: from.Reach}
	if !from.Unresolved {
		in.Node = &transform
	}
	return in
}
