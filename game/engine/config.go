package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCapacity = 3
	DefaultSpeed    = 0.1
	DefaultHalfSize = 0.3

	// ManifestFile is the pack manifest name inside a pack directory.
	ManifestFile = "pack.yaml"
)

var ErrInvalidRules = errors.New("invalid rules")

// Messages holds every status message the engine can emit. PickedUp takes
// the item title as its only verb; LevelStart takes the 1-based level number
// and the level count.
type Messages struct {
	Welcome         string `yaml:"welcome" json:"welcome"`
	LevelStart      string `yaml:"level_start" json:"level_start"`
	PickedUp        string `yaml:"picked_up" json:"picked_up"`
	InventoryFull   string `yaml:"inventory_full" json:"inventory_full"`
	NeedKey         string `yaml:"need_key" json:"need_key"`
	DoorOpened      string `yaml:"door_opened" json:"door_opened"`
	MonsterSlain    string `yaml:"monster_slain" json:"monster_slain"`
	FireDoused      string `yaml:"fire_doused" json:"fire_doused"`
	KilledByMonster string `yaml:"killed_by_monster" json:"killed_by_monster"`
	Burned          string `yaml:"burned" json:"burned"`
	Wall            string `yaml:"wall" json:"wall"`
	Cleared         string `yaml:"cleared" json:"cleared"`
	Reset           string `yaml:"reset" json:"reset"`
}

// Rules are the per-session gameplay parameters.
type Rules struct {
	Capacity int      `yaml:"capacity" json:"capacity"`
	Speed    float64  `yaml:"speed" json:"speed"`
	HalfSize float64  `yaml:"half_size" json:"half_size"`
	Messages Messages `yaml:"messages" json:"messages"`
}

// DefaultMessages returns the stock message set.
func DefaultMessages() Messages {
	return Messages{
		Welcome:         "Welcome to Stack Quest! Only the top of your backpack counts.",
		LevelStart:      "Level %d of %d",
		PickedUp:        "Picked up %s!",
		InventoryFull:   "Backpack is full!",
		NeedKey:         "The door is locked. Put a key on top of your stack.",
		DoorOpened:      "The door swings open!",
		MonsterSlain:    "Your sword slays the monster!",
		FireDoused:      "Your water puts out the fire!",
		KilledByMonster: "The monster got you! Reset to try again.",
		Burned:          "You walked into the fire! Reset to try again.",
		Wall:            "Ouch! It's a wall.",
		Cleared:         "Victory! Every level cleared.",
		Reset:           "Level restarted.",
	}
}

// DefaultRules returns the stock rules.
func DefaultRules() Rules {
	return Rules{
		Capacity: DefaultCapacity,
		Speed:    DefaultSpeed,
		HalfSize: DefaultHalfSize,
		Messages: DefaultMessages(),
	}
}

// WithDefaults fills every zero field from DefaultRules.
func (r Rules) WithDefaults() Rules {
	d := DefaultRules()
	if r.Capacity == 0 {
		r.Capacity = d.Capacity
	}
	if r.Speed == 0 {
		r.Speed = d.Speed
	}
	if r.HalfSize == 0 {
		r.HalfSize = d.HalfSize
	}
	m, dm := &r.Messages, d.Messages
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&m.Welcome, dm.Welcome)
	fill(&m.LevelStart, dm.LevelStart)
	fill(&m.PickedUp, dm.PickedUp)
	fill(&m.InventoryFull, dm.InventoryFull)
	fill(&m.NeedKey, dm.NeedKey)
	fill(&m.DoorOpened, dm.DoorOpened)
	fill(&m.MonsterSlain, dm.MonsterSlain)
	fill(&m.FireDoused, dm.FireDoused)
	fill(&m.KilledByMonster, dm.KilledByMonster)
	fill(&m.Burned, dm.Burned)
	fill(&m.Wall, dm.Wall)
	fill(&m.Cleared, dm.Cleared)
	fill(&m.Reset, dm.Reset)
	return r
}

// ValidateRules checks that r describes a playable session. A speed above
// one tile per tick could carry the box across a wall, and a box of a full
// tile or more could never pass a one-tile corridor.
func ValidateRules(r Rules) error {
	if r.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1, got %d", ErrInvalidRules, r.Capacity)
	}
	if r.HalfSize <= 0 || r.HalfSize >= 0.5 {
		return fmt.Errorf("%w: half_size must be in (0, 0.5), got %g", ErrInvalidRules, r.HalfSize)
	}
	if r.Speed <= 0 || r.Speed > 1 {
		return fmt.Errorf("%w: speed must be in (0, 1], got %g", ErrInvalidRules, r.Speed)
	}
	if r.Messages.PickedUp != "" && !strings.Contains(r.Messages.PickedUp, "%s") {
		return fmt.Errorf("%w: messages.picked_up must contain %%s for the item", ErrInvalidRules)
	}
	if r.Messages.LevelStart != "" && strings.Count(r.Messages.LevelStart, "%d") != 2 {
		return fmt.Errorf("%w: messages.level_start must contain two %%d verbs", ErrInvalidRules)
	}
	return nil
}

// PackManifest is the YAML document describing a level pack.
type PackManifest struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Capacity    int      `yaml:"capacity" json:"capacity"`
	Speed       float64  `yaml:"speed" json:"speed"`
	HalfSize    float64  `yaml:"half_size" json:"half_size"`
	Levels      []string `yaml:"levels" json:"levels"`
	Messages    Messages `yaml:"messages" json:"messages"`
}

// Rules returns the manifest's rules with defaults applied.
func (m PackManifest) Rules() Rules {
	return Rules{
		Capacity: m.Capacity,
		Speed:    m.Speed,
		HalfSize: m.HalfSize,
		Messages: m.Messages,
	}.WithDefaults()
}

// ValidateManifest checks a parsed manifest for correctness.
func ValidateManifest(m *PackManifest) error {
	if m.Name == "" {
		return fmt.Errorf("pack validation: name is required")
	}
	if len(m.Levels) == 0 {
		return fmt.Errorf("pack validation: at least one level is required")
	}
	for i, name := range m.Levels {
		if name == "" || strings.Contains(name, "..") || path.IsAbs(name) {
			return fmt.Errorf("pack validation: level %d has invalid path %q", i+1, name)
		}
	}
	if err := ValidateRules(m.Rules()); err != nil {
		return fmt.Errorf("pack validation: %w", err)
	}
	return nil
}

// Pack is a loaded level pack: its rules and ordered level sequence.
type Pack struct {
	ID       string       `json:"id"`
	Manifest PackManifest `json:"manifest"`
	Rules    Rules        `json:"rules"`
	Levels   *Sequence    `json:"-"`
}

// LoadPack reads dir/pack.yaml from fsys and binds the listed levels.
// Level files are not read until the engine loads them.
func LoadPack(fsys fs.FS, dir string) (*Pack, error) {
	data, err := fs.ReadFile(fsys, path.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read pack manifest: %w", err)
	}

	var manifest PackManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse pack manifest: %w", err)
	}

	if err := ValidateManifest(&manifest); err != nil {
		return nil, err
	}

	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open pack directory: %w", err)
	}

	return &Pack{
		ID:       path.Base(dir),
		Manifest: manifest,
		Rules:    manifest.Rules(),
		Levels:   NewSequence(sub, manifest.Levels...),
	}, nil
}

// NewEngine starts a fresh game on the pack's first level.
func (p *Pack) NewEngine() (*GameEngine, error) {
	return New(p.Levels, p.Rules)
}
