package track

import "time"

// Record represents one played track as reported by a single service.
// Records are ephemeral: every refresh produces a fresh set.
type Record struct {
	Artist   string
	Name     string
	Album    string
	PlayedAt *int64 // Epoch seconds; nil means the track is currently playing
	Loved    bool
	Source   string // Service that produced this observation

	// ExternalID is the service-side identifier of this play, for
	// services that expose one (e.g. ListenBrainz recording MSIDs).
	ExternalID string
}

// PlayedTime returns the play time as a time.Time, or the zero value if the
// track is currently playing.
func (r Record) PlayedTime() time.Time {
	if r.PlayedAt == nil {
		return time.Time{}
	}
	return time.Unix(*r.PlayedAt, 0)
}

// Observation records what a single service knows about a logical play.
type Observation struct {
	Timestamp  *int64 // Epoch seconds as reported by that service
	ExternalID string // Service-side identifier, if the service exposes one
}

// SyncStatus classifies how completely a logical play is represented
// across the enabled services.
type SyncStatus int

const (
	StatusUnknown     SyncStatus = iota
	StatusSynced                 // Present in every enabled service
	StatusPartial                // Present in some, but not all, enabled services
	StatusPrimaryOnly            // Present only in the service it was fetched from
)

// String returns a human-readable representation of the SyncStatus
func (s SyncStatus) String() string {
	switch s {
	case StatusSynced:
		return "synced"
	case StatusPartial:
		return "partial"
	case StatusPrimaryOnly:
		return "primary-only"
	default:
		return "unknown"
	}
}

// Reconciled is the logical, user-facing record after merging matched
// observations from multiple services. Base attributes come from the
// chosen base observation (the preferred service's record when it was
// part of the match).
type Reconciled struct {
	Record

	// Services maps service name to that service's observation of this
	// play. Entries are additive: once a service has been matched in,
	// its entry is never removed during the refresh.
	Services map[string]Observation

	// Status is recomputed after every merge pass and never persisted.
	Status SyncStatus
}

// NewReconciled seeds a reconciled record from a single observation,
// registering the source service's own entry.
func NewReconciled(rec Record) *Reconciled {
	r := &Reconciled{
		Record:   rec,
		Services: make(map[string]Observation, 2),
	}
	r.Services[rec.Source] = Observation{Timestamp: rec.PlayedAt, ExternalID: rec.ExternalID}
	return r
}

// Observe upserts one service's entry. Existing entries for other
// services are untouched.
func (r *Reconciled) Observe(service string, obs Observation) {
	r.Services[service] = obs
}

// ObservedBy reports whether the given service has an entry for this play.
func (r *Reconciled) ObservedBy(service string) bool {
	_, ok := r.Services[service]
	return ok
}

// Identifier is the minimal key needed to request deletion of one play
// from one service.
type Identifier struct {
	Artist     string
	Track      string
	Timestamp  *int64
	ExternalID string
}
