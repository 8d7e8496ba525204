package service

import (
	"fmt"

	"github.com/smerrill/playsync/internal/config"
)

// Build constructs adapters for every enabled service in the
// configuration, keyed by service name.
func Build(cfg *config.Config) (map[string]Adapter, error) {
	adapters := make(map[string]Adapter)

	for _, cred := range cfg.Snapshot() {
		if !cred.Enabled {
			continue
		}

		sc := cfg.Services[cred.Service]

		var (
			adapter Adapter
			err     error
		)
		switch cred.Service {
		case "lastfm":
			adapter, err = NewLastFM(cred, sc)
		case "listenbrainz":
			adapter, err = NewListenBrainz(cred, sc)
		case "librefm":
			adapter, err = NewLibreFM(cred, sc)
		default:
			err = fmt.Errorf("unknown service %q", cred.Service)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to build %s adapter: %w", cred.Service, err)
		}

		adapters[cred.Service] = adapter
	}

	return adapters, nil
}
