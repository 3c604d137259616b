package audio

import (
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// player is a CLI program that accepts raw s16le stereo on stdin
type player struct {
	backend BackendType
	name    string
	binary  string
	args    func(rate string) []string
}

// players in probe order
var players = []player{
	{BackendPulse, "pacat", "pacat", func(r string) []string {
		return []string{"--raw", "--format=s16le", "--rate=" + r, "--channels=2", "--latency-msec=50", "--playback"}
	}},
	{BackendPipeWire, "pw-cat", "pw-cat", func(r string) []string {
		return []string{"--playback", "--format=s16", "--rate=" + r, "--channels=2", "--latency=50ms", "-"}
	}},
	{BackendALSA, "aplay", "aplay", func(r string) []string {
		return []string{"-t", "raw", "-f", "S16_LE", "-r", r, "-c", "2", "-q"}
	}},
	{BackendSoX, "sox", "play", func(r string) []string {
		return []string{"-t", "raw", "-e", "signed", "-b", "16", "-c", "2", "-r", r, "-", "-d", "-q"}
	}},
	{BackendFFplay, "ffplay", "ffplay", func(r string) []string {
		return []string{
			"-nodisp", "-autoexit", "-f", "s16le", "-ac", "2", "-ar", r,
			"-probesize", "32", "-analyzeduration", "0", "-i", "pipe:0", "-loglevel", "quiet",
		}
	}},
}

// DetectBackend returns the first installed player configured for rate, then OSS on FreeBSD
func DetectBackend(rate int) (*BackendConfig, error) {
	return detect(rate, exec.LookPath, func() bool {
		if runtime.GOOS != "freebsd" {
			return false
		}
		_, err := os.Stat(ossDevice)
		return err == nil
	})
}

const ossDevice = "/dev/dsp"

func detect(rate int, lookPath func(string) (string, error), hasOSS func() bool) (*BackendConfig, error) {
	r := strconv.Itoa(rate)
	for _, p := range players {
		path, err := lookPath(p.binary)
		if err != nil {
			continue
		}
		return &BackendConfig{Type: p.backend, Name: p.name, Path: path, Args: p.args(r)}, nil
	}

	// OSS takes PCM as a plain device write
	if hasOSS() {
		return &BackendConfig{Type: BackendOSS, Name: "oss", Path: ossDevice}, nil
	}
	return nil, ErrNoAudioBackend
}
