package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/strider/parameter"
	"github.com/lixenwraith/strider/physics"
)

// Config is the complete sandbox/runtime configuration
type Config struct {
	Solver  Solver  `toml:"solver" yaml:"solver"`
	Rig     Rig     `toml:"rig" yaml:"rig"`
	Terrain Terrain `toml:"terrain" yaml:"terrain"`
}

// Solver tunes the per-frame pass
type Solver struct {
	RotationLerpRate float64 `toml:"rotation_lerp_rate" yaml:"rotation_lerp_rate" validate:"gte=0"`
	MaxDeltaTime     float64 `toml:"max_delta_time" yaml:"max_delta_time" validate:"gte=0"`
	Parallel         bool    `toml:"parallel" yaml:"parallel"`
	GroundLayers     []int   `toml:"ground_layers" yaml:"ground_layers" validate:"dive,gte=0,lte=31"`
}

// Rig describes a procedurally built legged body
type Rig struct {
	BodyHeight float64 `toml:"body_height" yaml:"body_height" validate:"gt=0"`
	BodyLength float64 `toml:"body_length" yaml:"body_length" validate:"gte=0"`
	BodyWidth  float64 `toml:"body_width" yaml:"body_width" validate:"gte=0"`
	Gait       Gait    `toml:"gait" yaml:"gait"`
	Legs       []Leg   `toml:"legs" yaml:"legs" validate:"min=1,dive"`
}

// Gait drives the procedural stepping animation
type Gait struct {
	StepHeight  float64 `toml:"step_height" yaml:"step_height" validate:"gte=0"`
	StepPeriod  float64 `toml:"step_period" yaml:"step_period" validate:"gt=0"`
	StrideAngle float64 `toml:"stride_angle" yaml:"stride_angle" validate:"gte=0,lte=1.5"`
}

// Leg describes one two-bone leg, vectors are [x, y, z] in body space
type Leg struct {
	Name         string    `toml:"name" yaml:"name" validate:"required"`
	Hip          []float64 `toml:"hip" yaml:"hip" validate:"len=3"`
	Pole         []float64 `toml:"pole" yaml:"pole" validate:"omitempty,len=3"`
	UpperLength  float64   `toml:"upper_length" yaml:"upper_length" validate:"gt=0"`
	LowerLength  float64   `toml:"lower_length" yaml:"lower_length" validate:"gt=0"`
	FootHeight   float64   `toml:"foot_height" yaml:"foot_height" validate:"gte=0"`
	MinExtension float64   `toml:"min_extension" yaml:"min_extension" validate:"gte=0,lte=1,ltefield=MaxExtension"`
	MaxExtension float64   `toml:"max_extension" yaml:"max_extension" validate:"gt=0,lte=1"`
	Phase        float64   `toml:"phase" yaml:"phase" validate:"gte=0,lt=1"`
}

// Terrain describes the sandbox heightfield
type Terrain struct {
	Size       float64 `toml:"size" yaml:"size" validate:"gt=0"`
	CellSize   float64 `toml:"cell_size" yaml:"cell_size" validate:"gt=0"`
	Amplitude  float64 `toml:"amplitude" yaml:"amplitude" validate:"gte=0"`
	Wavelength float64 `toml:"wavelength" yaml:"wavelength" validate:"gt=0"`
	Steps      []Step  `toml:"steps" yaml:"steps" validate:"dive"`
}

// Step is a box ledge placed on the terrain
type Step struct {
	Min []float64 `toml:"min" yaml:"min" validate:"len=3"`
	Max []float64 `toml:"max" yaml:"max" validate:"len=3"`
}

// Vec3 converts a validated [x, y, z] slice, empty slices are the zero vector
func Vec3(v []float64) mgl64.Vec3 {
	if len(v) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// GroundMask converts the configured layer list, empty selects the default ground layer
func (s Solver) GroundMask() physics.LayerMask {
	if len(s.GroundLayers) == 0 {
		return physics.LayerBit(parameter.GroundLayer)
	}
	return physics.MaskOf(s.GroundLayers...)
}

// Default returns a four-legged mech on rolling terrain
func Default() *Config {
	cfg := &Config{
		Solver: Solver{
			RotationLerpRate: parameter.RotationLerpRate,
			MaxDeltaTime:     parameter.MaxDeltaTime,
		},
		Rig: Rig{
			BodyHeight: parameter.DefaultBodyHeight,
			BodyLength: 1.6,
			BodyWidth:  1.2,
			Gait: Gait{
				StepHeight:  parameter.DefaultStepHeight,
				StepPeriod:  parameter.DefaultStepPeriod,
				StrideAngle: parameter.DefaultStrideAngle,
			},
		},
		Terrain: Terrain{
			Size:       40,
			CellSize:   0.5,
			Amplitude:  0.35,
			Wavelength: 6,
		},
	}

	corners := []struct {
		name  string
		x, z  float64
		phase float64
	}{
		{"front_left", -0.6, 0.8, 0},
		{"front_right", 0.6, 0.8, 0.5},
		{"rear_left", -0.6, -0.8, 0.5},
		{"rear_right", 0.6, -0.8, 0},
	}
	for _, c := range corners {
		cfg.Rig.Legs = append(cfg.Rig.Legs, Leg{
			Name:         c.name,
			Hip:          []float64{c.x, 0, c.z},
			Pole:         []float64{0, 0, parameter.DefaultPoleDistance},
			UpperLength:  parameter.DefaultUpperLength,
			LowerLength:  parameter.DefaultLowerLength,
			FootHeight:   parameter.DefaultFootHeight,
			MinExtension: parameter.DefaultMinExtension,
			MaxExtension: parameter.DefaultMaxExtension,
			Phase:        c.phase,
		})
	}
	return cfg
}

// ApplyDefaults fills zero-valued fields; MinExtension and FootHeight keep explicit zeros.
// Solver rates are seeded before decoding instead, so a file may set them to 0:
// rotation_lerp_rate = 0 freezes foot blending and max_delta_time = 0 disables the step cap
func (c *Config) ApplyDefaults() {
	r := &c.Rig
	if r.BodyHeight == 0 {
		r.BodyHeight = parameter.DefaultBodyHeight
	}
	if r.Gait.StepPeriod == 0 {
		r.Gait.StepPeriod = parameter.DefaultStepPeriod
	}
	for i := range r.Legs {
		l := &r.Legs[i]
		if l.UpperLength == 0 {
			l.UpperLength = parameter.DefaultUpperLength
		}
		if l.LowerLength == 0 {
			l.LowerLength = parameter.DefaultLowerLength
		}
		if l.MaxExtension == 0 {
			l.MaxExtension = parameter.DefaultMaxExtension
		}
		if len(l.Pole) == 0 {
			l.Pole = []float64{0, 0, parameter.DefaultPoleDistance}
		}
	}

	t := &c.Terrain
	if t.Size == 0 {
		t.Size = 40
	}
	if t.CellSize == 0 {
		t.CellSize = 0.5
	}
	if t.Wavelength == 0 {
		t.Wavelength = 6
	}
}

// Parse decodes data in the given format ("toml", "yaml" or "yml"), applies defaults and validates
func Parse(data []byte, format string) (*Config, error) {
	cfg := &Config{Solver: Solver{
		RotationLerpRate: parameter.RotationLerpRate,
		MaxDeltaTime:     parameter.MaxDeltaTime,
	}}
	var err error
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "toml":
		err = toml.Unmarshal(data, cfg)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s config: %w", format, err)
	}

	cfg.ApplyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a config file, choosing the decoder from its extension
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
