package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kymoh/darasa/core/catalog"
)

func constraintsWith(start, end string) catalog.Constraints {
	return catalog.Constraints{ChatWindow: catalog.ChatWindow{Start: start, End: end}}
}

func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 2, hour, min, 30, 0, time.Local)
}

func TestIsOpen(t *testing.T) {
	tests := []struct {
		name string
		cons catalog.Constraints
		now  time.Time
		want bool
	}{
		{name: "inside window", cons: constraintsWith("08:00", "18:00"), now: at(12, 0), want: true},
		{name: "start bound inclusive", cons: constraintsWith("08:00", "18:00"), now: at(8, 0), want: true},
		{name: "end bound inclusive", cons: constraintsWith("08:00", "18:00"), now: at(18, 0), want: true},
		{name: "before window", cons: constraintsWith("08:00", "18:00"), now: at(7, 59), want: false},
		{name: "after window", cons: constraintsWith("08:00", "18:00"), now: at(18, 1), want: false},
		{name: "unset window is closed", cons: catalog.Constraints{}, now: at(12, 0), want: false},
		{name: "half-set window is closed", cons: constraintsWith("08:00", ""), now: at(12, 0), want: false},
		{name: "malformed start is closed", cons: constraintsWith("8am", "18:00"), now: at(12, 0), want: false},
		{name: "malformed end is closed", cons: constraintsWith("08:00", "25:99"), now: at(12, 0), want: false},
		{name: "inverted window never opens", cons: constraintsWith("18:00", "08:00"), now: at(12, 0), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOpen(tt.cons, tt.now))
		})
	}
}
