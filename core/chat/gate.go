package chat

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/kymoh/darasa/core/catalog"
)

// ErrWindowClosed is returned when a send is attempted outside the configured
// chat window. The caller keeps the draft; nothing reaches the store or the
// network.
var ErrWindowClosed = errors.New("chat window is closed")

// IsOpen reports whether the channel accepts messages at `now`, comparing the
// local time-of-day in minutes against the configured HH:MM window, inclusive
// on both bounds. An unset or malformed window keeps the channel closed.
func IsOpen(constraints catalog.Constraints, now time.Time) bool {
	w := constraints.ChatWindow
	if !w.IsSet() {
		return false
	}
	start, err := minuteOfDay(w.Start)
	if err != nil {
		return false
	}
	end, err := minuteOfDay(w.End)
	if err != nil {
		return false
	}
	cur := now.Hour()*60 + now.Minute()
	return start <= cur && cur <= end
}

func minuteOfDay(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, errors.Errorf("malformed wall-clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, errors.Wrapf(err, "malformed hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.Wrapf(err, "malformed minute in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, errors.Errorf("wall-clock time %q out of range", s)
	}
	return h*60 + m, nil
}
