package ar

// Status values carried by AR lifecycle events. The renderer reports
// session progress through these; the feature adds failed when no
// launch method is available.
type Status string

const (
	StatusNotPresenting  Status = "not-presenting"
	StatusSessionStarted Status = "session-started"
	StatusObjectPlaced   Status = "object-placed"
	StatusFailed         Status = "failed"
)

// StatusEvent is delivered to the host on AR lifecycle changes.
type StatusEvent struct {
	Status Status
}
