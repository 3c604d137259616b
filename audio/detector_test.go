package audio

import (
	"errors"
	"os/exec"
	"slices"
	"testing"
)

func lookIn(installed ...string) func(string) (string, error) {
	return func(bin string) (string, error) {
		if slices.Contains(installed, bin) {
			return "/usr/bin/" + bin, nil
		}
		return "", exec.ErrNotFound
	}
}

func TestDetectPriority(t *testing.T) {
	tests := []struct {
		name      string
		installed []string
		oss       bool
		want      BackendType
		wantPath  string
	}{
		{"pulse first", []string{"aplay", "pacat", "play"}, false, BackendPulse, "/usr/bin/pacat"},
		{"alsa before sox", []string{"play", "aplay"}, false, BackendALSA, "/usr/bin/aplay"},
		{"sox binary is play", []string{"play"}, false, BackendSoX, "/usr/bin/play"},
		{"oss last", nil, true, BackendOSS, ossDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := detect(48000, lookIn(tt.installed...), func() bool { return tt.oss })
			if err != nil {
				t.Fatalf("detect: %v", err)
			}
			if b.Type != tt.want || b.Path != tt.wantPath {
				t.Errorf("Expected %v at %s, got %v at %s", tt.want, tt.wantPath, b.Type, b.Path)
			}
		})
	}
}

func TestDetectRateInArgs(t *testing.T) {
	b, err := detect(22050, lookIn("pacat"), func() bool { return false })
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !slices.Contains(b.Args, "--rate=22050") {
		t.Errorf("Expected sample rate in args, got %v", b.Args)
	}
}

func TestDetectNone(t *testing.T) {
	if _, err := detect(44100, lookIn(), func() bool { return false }); !errors.Is(err, ErrNoAudioBackend) {
		t.Errorf("Expected ErrNoAudioBackend, got %v", err)
	}
}
