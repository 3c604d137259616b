package parameter

import "time"

// Solver tuning
const (
	// RotationLerpRate is the foot orientation blend rate per second
	RotationLerpRate = 10.0

	// MaxDeltaTime caps a single frame step in seconds so a stall does not snap every foot at once
	MaxDeltaTime = 0.1

	// GroundProbeLengthFactor scales leg length into the ground probe distance
	GroundProbeLengthFactor = 2.0

	// GroundLayer is the collision layer walkable geometry lives on
	GroundLayer = 0
)

// Leg defaults applied to zero config fields
const (
	DefaultMinExtension = 0.25
	DefaultMaxExtension = 0.95
	DefaultFootHeight   = 0.08
	DefaultUpperLength  = 0.9
	DefaultLowerLength  = 0.9
	DefaultBodyHeight   = 1.4
	DefaultPoleDistance = 1.0
)

// Gait animation defaults
const (
	DefaultStepHeight  = 0.35
	DefaultStepPeriod  = 1.2 // Seconds per full gait cycle
	DefaultStrideAngle = 0.35
)

// Sandbox timing
const (
	// FrameUpdateInterval is the sandbox frame interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// ConfigReloadDebounce coalesces bursts of write events from editors
	ConfigReloadDebounce = 150 * time.Millisecond

	SandboxWalkSpeed    = 1.2  // Body speed in m/s while walking
	SandboxLateralStep  = 0.25 // Sideways shift per key press in m
	SandboxCellsPerUnit = 6.0  // Horizontal terminal cells per metre
	SandboxRowsPerUnit  = 3.0  // Vertical terminal rows per metre, cells are roughly 2:1
	SandboxProbeHeight  = 50.0 // Ray origin height when following the terrain
)

// Footfall audio
const (
	FootfallSampleRate      = 44100
	FootfallDuration        = 90 * time.Millisecond
	FootfallAttack          = 4 * time.Millisecond
	FootfallRelease         = 70 * time.Millisecond
	FootfallBaseFrequency   = 70.0
	FootfallFrequencySpread = 12.0 // Per-leg pitch offset in Hz
	FootfallPitchDrop       = 0.55 // End pitch as a fraction of the start pitch
	FootfallClickLevel      = 0.2  // Share of the sole click in the mix
	FootfallVolume          = 0.6
)

// Audio output buffering
const (
	AudioBufferDuration = 20 * time.Millisecond
	AudioBufferSamples  = FootfallSampleRate * 20 / 1000
	AudioBytesPerFrame  = 4 // Stereo int16
	AudioQueueSize      = 32
	AudioMaxVoices      = 8 // Overlapping footfalls, the oldest is replaced when full
)
