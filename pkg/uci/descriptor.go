// Package uci contains a client-side driver for chess engines speaking the
// UCI protocol over stdin/stdout.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Descriptor identifies an engine executable. Read-only once created.
type Descriptor struct {
	// Path is the filesystem path to the engine executable.
	Path string
	// Name is the display name used in results and logs.
	Name string
	// Args are extra command-line arguments passed to the engine.
	Args []string
}

// NewDescriptor returns a descriptor for the given executable, after verifying
// that it exists, is a regular file and is executable. If name is empty, the
// executable base name is used.
func NewDescriptor(path, name string, args ...string) (Descriptor, error) {
	if err := verifyExecutable(path); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	if name == "" {
		name = filepath.Base(path)
	}
	return Descriptor{Path: path, Name: name, Args: args}, nil
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%v (%v)", d.Name, d.Path)
}

// verifyExecutable probes that path is a spawnable executable. On Windows the
// probe falls back to extension semantics; elsewhere the mode bits decide.
func verifyExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %v", path)
	}
	if runtime.GOOS == "windows" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".exe", ".bat", ".cmd", "":
			return nil
		default:
			return fmt.Errorf("not an executable: %v", path)
		}
	}
	if info.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("not an executable: %v", path)
	}
	return nil
}
