package reconcile

import (
	"github.com/smerrill/playsync/internal/track"
)

// ComputeStatus classifies how completely a reconciled play is
// represented across the enabled services. It is a pure function of
// the record's service entries and the enabled set: derived fresh
// after every merge pass, never persisted.
func ComputeStatus(r *track.Reconciled, enabled []string) track.SyncStatus {
	if len(enabled) == 0 {
		return track.StatusUnknown
	}

	presentIn := make(map[string]bool, len(r.Services)+1)
	presentIn[r.Source] = true
	for svc := range r.Services {
		presentIn[svc] = true
	}

	if len(presentIn) == 1 {
		if len(enabled) == 1 && presentIn[enabled[0]] {
			return track.StatusSynced
		}
		return track.StatusPrimaryOnly
	}

	if len(presentIn) == len(enabled) {
		synced := true
		for _, svc := range enabled {
			if !presentIn[svc] {
				synced = false
				break
			}
		}
		if synced {
			return track.StatusSynced
		}
	}

	return track.StatusPartial
}
