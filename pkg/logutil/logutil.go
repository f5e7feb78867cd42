// Package logutil provides logging utilities.
//
// Loggers returned by GetLogger share one process-wide output, which discards
// everything until SetOutput or SetOutputFile is called. The output can be
// changed at any time, and loggers created earlier follow the change.
package logutil

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	out     io.Writer = io.Discard
	outFile *os.File
	loggers []*log.Logger
)

// Discard is a Logger that ignores all loggings.
var Discard = log.New(io.Discard, "", 0)

// GetLogger gets a logger with the given prefix. Packages usually keep the
// returned logger in a package-level variable.
func GetLogger(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	logger := log.New(out, prefix, log.LstdFlags)
	loggers = append(loggers, logger)
	return logger
}

// SetOutput redirects the output of all loggers obtained with GetLogger to
// the given writer. If the output was previously set with SetOutputFile, that
// file is closed.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	setOutput(w)
	if outFile != nil {
		outFile.Close()
		outFile = nil
	}
}

// SetOutputFile redirects the output of all loggers obtained with GetLogger
// to the named file, which is created or appended to. If fname is empty, the
// output is discarded.
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	file, err := os.OpenFile(fname, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	setOutput(file)
	if outFile != nil {
		outFile.Close()
	}
	outFile = file
	return nil
}

func setOutput(w io.Writer) {
	out = w
	for _, logger := range loggers {
		logger.SetOutput(w)
	}
}
