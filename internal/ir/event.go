package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// EventID identifies one processing unit.
type EventID struct {
	Run    uint32 `json:"run"`
	SubRun uint32 `json:"subrun"`
	Event  uint32 `json:"event"`
}

// String formats the ID as run:subrun:event.
func (id EventID) String() string {
	return fmt.Sprintf("%d:%d:%d", id.Run, id.SubRun, id.Event)
}

// ParseEventID parses run:subrun:event.
func ParseEventID(s string) (EventID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return EventID{}, fmt.Errorf("event id %q: want run:subrun:event", s)
	}
	var vals [3]uint32
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return EventID{}, fmt.Errorf("event id %q: %w", s, err)
		}
		vals[i] = uint32(v)
	}
	return EventID{Run: vals[0], SubRun: vals[1], Event: vals[2]}, nil
}
