package village

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning holds every constant of the simulation and the interaction model.
// The zero value is not useful; start from DefaultTuning.
type Tuning struct {
	// TickInterval is the fixed simulation step.
	TickInterval time.Duration `yaml:"tick_interval"`

	// Dolls
	IdleThreshold   time.Duration `yaml:"idle_threshold"`    // idle time before a walking doll sets off
	InitialIdleAge  time.Duration `yaml:"initial_idle_age"`  // age given to a fresh idle timer
	TalkDuration    time.Duration `yaml:"talk_duration"`     // length of a chat
	ChatRadius      float64       `yaml:"chat_radius"`       // max distance between chatting dolls
	WalkMsPerPixel  float64       `yaml:"walk_ms_per_pixel"` // walk and rescue pace
	WalkDistance    Range         `yaml:"walk_distance"`     // length of one walk segment
	SkyTolerance    float64       `yaml:"sky_tolerance"`     // how far above the ground line a doll may stand
	GroundBand      float64       `yaml:"ground_band"`       // depth below the ground line used for rescue targets
	HorizonBuffer   float64       `yaml:"horizon_buffer"`    // ground line = horizon minus this
	DockSafeZone    float64       `yaml:"dock_safe_zone"`    // bottom band NPCs never walk into
	WorldWidthScale float64       `yaml:"world_width_scale"` // world width in viewport widths
	WorldEdgeMargin float64       `yaml:"world_edge_margin"` // right-edge margin for walk targets

	// Fish
	FishMargin      float64 `yaml:"fish_margin"`       // containment slack around water bounds
	FishPadding     float64 `yaml:"fish_padding"`      // bounce inset inside water bounds
	FishInitSpeed   Vec2    `yaml:"fish_init_speed"`   // full width of the random initial velocity
	FishWanderProb  float64 `yaml:"fish_wander_prob"`  // chance per tick of a velocity nudge
	FishWanderDelta float64 `yaml:"fish_wander_delta"` // full width of a nudge
	FishMaxSpeed    Vec2    `yaml:"fish_max_speed"`    // per-axis speed cap

	// Interaction
	DockLine          float64       `yaml:"dock_line"`           // items may not be dragged below viewport height minus this
	MouseTapDistance  float64       `yaml:"mouse_tap_distance"`  // max travel of a mouse tap
	TouchTapDistance  float64       `yaml:"touch_tap_distance"`  // max travel of a finger tap
	SyntheticMouseWin time.Duration `yaml:"synthetic_mouse_win"` // window for ignoring emulated mouse events

	// Placement
	SpawnDockZone    float64       `yaml:"spawn_dock_zone"`    // bottom band items never spawn into
	SpawnBottomSlack float64       `yaml:"spawn_bottom_slack"` // extra margin above the spawn dock zone
	MobileWidth      float64       `yaml:"mobile_width"`       // viewports narrower than this are "mobile"
	DefaultScale     float64       `yaml:"default_scale"`      // initial sprite scale on desktop
	MobileScale      float64       `yaml:"mobile_scale"`       // initial sprite scale on mobile
	Highlight        time.Duration `yaml:"highlight"`          // spawn highlight duration

	// Persistence
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
}

// DefaultTuning returns the tuning the village ships with.
func DefaultTuning() Tuning {
	return Tuning{
		TickInterval: 50 * time.Millisecond,

		IdleThreshold:   2000 * time.Millisecond,
		InitialIdleAge:  3000 * time.Millisecond,
		TalkDuration:    4000 * time.Millisecond,
		ChatRadius:      80,
		WalkMsPerPixel:  20,
		WalkDistance:    Range{Min: 50, Max: 200},
		SkyTolerance:    50,
		GroundBand:      100,
		HorizonBuffer:   20,
		DockSafeZone:    100,
		WorldWidthScale: 3,
		WorldEdgeMargin: 100,

		FishMargin:      20,
		FishPadding:     10,
		FishInitSpeed:   Vec2{1, 0.5},
		FishWanderProb:  0.05,
		FishWanderDelta: 0.5,
		FishMaxSpeed:    Vec2{0.8, 0.5},

		DockLine:          180,
		MouseTapDistance:  5,
		TouchTapDistance:  30,
		SyntheticMouseWin: 500 * time.Millisecond,

		SpawnDockZone:    180,
		SpawnBottomSlack: 50,
		MobileWidth:      768,
		DefaultScale:     0.4,
		MobileScale:      0.7,
		Highlight:        2000 * time.Millisecond,

		AutosaveInterval: 2000 * time.Millisecond,
	}
}

// LoadTuning reads a YAML tuning file. Keys missing from the file keep their
// DefaultTuning values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("load tuning: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return DefaultTuning(), fmt.Errorf("load tuning %s: %w", path, err)
	}
	return t, nil
}

// YAML renders the tuning as YAML, suitable as a starting file.
func (t Tuning) YAML() ([]byte, error) {
	return yaml.Marshal(t)
}
