package audio

import (
	"errors"
)

// BackendType identifies how PCM leaves the process
type BackendType int

const (
	BackendPulse BackendType = iota
	BackendPipeWire
	BackendALSA
	BackendSoX
	BackendFFplay
	BackendOSS
)

// BackendConfig is a resolved output: a command fed on stdin, or a device path for OSS
type BackendConfig struct {
	Type BackendType
	Name string
	Path string
	Args []string
}

// floatBuffer is a pre-rendered mono footfall at unity gain
type floatBuffer []float64

var (
	ErrNoAudioBackend = errors.New("no audio player found")
	ErrPipeClosed     = errors.New("audio output closed")
	ErrRunning        = errors.New("footfall player already running")
)
