package daemon

import (
	"log/slog"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// logSurface stands in for a view when snackbard runs headless. Showing a
// request writes a log line.
type logSurface struct {
	logger  *slog.Logger
	mounted bool
	settled bool
}

func newLogSurface(logger *slog.Logger) *logSurface {
	return &logSurface{logger: logger}
}

func (s *logSurface) Mount(req snackbar.Request) {
	s.mounted = true
	s.settled = false
	s.logger.Info("snackbar", "message", req.Message(), "action", req.Action())
}

func (s *logSurface) SetPosition(p float64) {
	if p >= 1 && !s.settled {
		s.settled = true
		s.logger.Debug("snackbar settled")
	}
	if p < 1 {
		s.settled = false
	}
}

func (s *logSurface) Unmount() {
	if s.mounted {
		s.mounted = false
		s.logger.Debug("snackbar unmounted")
	}
}
