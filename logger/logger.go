// Package logger provides centralized logging for the application.
// File: logger/logger.go
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ------------------- global loggers -------------------

// four logger levels accessible throughout the application
var (
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	Debug *log.Logger
)

var (
	mu      sync.Mutex
	logFile *os.File
	out     io.Writer = os.Stdout
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

// ------------------- logger initialization -------------------

// InitLogger (re)initializes the loggers. With an empty dir everything goes to
// stdout; otherwise dir is created and a timestamped log file is written next
// to stdout.
func InitLogger(dir string) error {
	mu.Lock()
	defer mu.Unlock()

	var w io.Writer = os.Stdout
	if dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
		name := filepath.Join(dir, time.Now().Format("2006-01-02_15-04-05")+".log")
		file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec
		if err != nil {
			return err
		}
		if logFile != nil {
			_ = logFile.Close()
		}
		logFile = file
		w = io.MultiWriter(os.Stdout, file)
	}
	out = w

	Info = log.New(w, "INFO: ", flags)
	Warn = log.New(w, "WARN: ", flags)
	Error = log.New(w, "ERROR: ", flags)
	Debug = log.New(w, "DEBUG: ", flags)
	return nil
}

// SetLogLevel adjusts the Debug logger's output depending on environment.
// Production discards debug output, every other environment keeps it.
func SetLogLevel(env string) {
	SetVerbose(env != "production")
}

// SetVerbose toggles Debug output.
func SetVerbose(verbose bool) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		Debug.SetOutput(out)
	} else {
		Debug.SetOutput(io.Discard)
	}
}

// Close releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// init wires stdout-only loggers so packages can log before main configures
// anything (and in tests).
func init() {
	if err := InitLogger(""); err != nil {
		log.Fatalf("Failed to initialise custom logger: %v", err)
	}
}
