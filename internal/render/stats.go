package render

import (
	"log/slog"
	"time"

	"github.com/loov/hrtime"
)

// frameStats accumulates frame times and logs a summary once per
// interval.
type frameStats struct {
	log      *slog.Logger
	interval time.Duration
	now      func() time.Duration

	last        time.Duration
	windowStart time.Duration
	frames      int
	worst       time.Duration
}

func newFrameStats(log *slog.Logger, interval time.Duration) *frameStats {
	s := &frameStats{
		log:      log,
		interval: interval,
		now:      hrtime.Now,
	}
	s.reset()
	return s
}

func (s *frameStats) reset() {
	t := s.now()
	s.last = t
	s.windowStart = t
	s.frames = 0
	s.worst = 0
}

// frameDone records a presented frame.
func (s *frameStats) frameDone() {
	t := s.now()
	if d := t - s.last; d > s.worst {
		s.worst = d
	}
	s.last = t
	s.frames++

	elapsed := t - s.windowStart
	if elapsed < s.interval {
		return
	}
	avg := elapsed / time.Duration(s.frames)
	s.log.Debug("frame stats",
		"fps", float64(s.frames)/elapsed.Seconds(),
		"avg", avg,
		"worst", s.worst)
	s.windowStart = t
	s.frames = 0
	s.worst = 0
}
