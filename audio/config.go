package audio

import (
	"os"
	"strconv"

	"github.com/lixenwraith/strider/parameter"
)

// Config controls footfall playback
type Config struct {
	Enabled      bool
	SampleRate   int
	MasterVolume float64 // 0.0-1.0
}

// DefaultConfig returns playback disabled at the footfall sample rate
func DefaultConfig() *Config {
	return &Config{
		SampleRate:   parameter.FootfallSampleRate,
		MasterVolume: parameter.FootfallVolume,
	}
}

// LoadConfig overlays STRIDER_AUDIO_ENABLED, STRIDER_AUDIO_VOLUME (percent) and
// STRIDER_AUDIO_SAMPLE_RATE on the defaults; unparsable values are ignored
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if v, ok := envParse("STRIDER_AUDIO_ENABLED", strconv.ParseBool); ok {
		cfg.Enabled = v
	}
	if v, ok := envParse("STRIDER_AUDIO_VOLUME", strconv.Atoi); ok {
		cfg.MasterVolume = min(max(float64(v)/100, 0), 1)
	}
	if v, ok := envParse("STRIDER_AUDIO_SAMPLE_RATE", strconv.Atoi); ok && v > 0 {
		cfg.SampleRate = v
	}
	return cfg
}

func envParse[T any](key string, parse func(string) (T, error)) (T, bool) {
	var zero T
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return zero, false
	}
	v, err := parse(raw)
	if err != nil {
		return zero, false
	}
	return v, true
}
