package attendance

import (
	"cmp"
	"slices"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
)

// Deduplicate filters repeated scans of one employee. Events are first sorted
// by time (stable, so input order breaks ties). Per direction, the first scan
// is accepted and any later scan within windowMinutes of the last ACCEPTED
// scan of that direction is dropped; dropped scans never move that marker.
//
// It returns the accepted events in time order and the number dropped.
func Deduplicate(events []attendance.ScanEvent, windowMinutes int) ([]attendance.ScanEvent, int) {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b attendance.ScanEvent) int {
		return cmp.Compare(a.Minute, b.Minute)
	})

	lastAccepted := make(map[attendance.Direction]int, 2)
	accepted := make([]attendance.ScanEvent, 0, len(sorted))
	ignored := 0

	for _, evt := range sorted {
		if last, ok := lastAccepted[evt.Direction]; ok && evt.Minute-last <= windowMinutes {
			ignored++
			continue
		}
		lastAccepted[evt.Direction] = evt.Minute
		accepted = append(accepted, evt)
	}

	return accepted, ignored
}

// firstOf returns the first event of the given direction, or nil.
func firstOf(events []attendance.ScanEvent, dir attendance.Direction) *attendance.ScanEvent {
	for i := range events {
		if events[i].Direction == dir {
			return &events[i]
		}
	}
	return nil
}
