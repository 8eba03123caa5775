// ABOUTME: Backend factory
// ABOUTME: Opens a backend by configured name
package backend

import (
	"fmt"
	"log/slog"
	"strings"
)

// Names accepted by Open
const (
	NameOto  = "oto"
	NameBeep = "beep"
	NameNull = "null"
)

// Open creates the backend called name
func Open(name string, opts Options, logger *slog.Logger) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameOto, "":
		return NewOto(opts, logger)
	case NameBeep:
		return NewBeep(opts, logger)
	case NameNull:
		return NewNull(opts.MaxVoices), nil
	default:
		return nil, fmt.Errorf("unknown audio backend: %q", name)
	}
}
