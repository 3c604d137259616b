package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "ik-sandbox.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging sends the standard logger to logs/ik-sandbox.log in debug mode and discards it
// otherwise, so nothing writes over the terminal UI. Returns the open file or nil
func setupLogging(debug bool) *os.File {
	log.SetOutput(io.Discard)
	if !debug {
		return nil
	}

	f, err := openLog(logDir, logFileName, maxLogSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ik-sandbox: logging disabled: %v\n", err)
		return nil
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("=== ik-sandbox started, pid %d ===", os.Getpid())
	return f
}

// openLog opens dir/name for appending, first moving it aside with a timestamp suffix
// once it has grown past limit bytes
func openLog(dir, name string, limit int64) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, name)
	if info, err := os.Stat(path); err == nil && info.Size() > limit {
		ext := filepath.Ext(name)
		stamp := time.Now().Format("20060102-150405")
		rotated := filepath.Join(dir, fmt.Sprintf("%s-%s%s", name[:len(name)-len(ext)], stamp, ext))
		if err := os.Rename(path, rotated); err != nil {
			return nil, fmt.Errorf("rotate %s: %w", path, err)
		}
	}

	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
