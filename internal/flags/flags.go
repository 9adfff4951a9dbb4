// Package flags gates optional surfaces of the HTTP host. Flags are read-only
// after initialization and unknown flags are off.
package flags

import (
	"maps"
	"sort"

	"github.com/zjrosen/mxview/internal/log"
)

const (
	// FlagEventStream enables GET /events.
	FlagEventStream = "event-stream"

	// FlagRemoteRegistration enables POST and DELETE /resource, letting
	// clients register static resources in the primary registry.
	FlagRemoteRegistration = "remote-registration"

	// FlagMetrics enables GET /metrics.
	FlagMetrics = "metrics"
)

// Defaults returns the flag values used when configuration sets none.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagEventStream:        true,
		FlagRemoteRegistration: false,
		FlagMetrics:            true,
	}
}

// Registry holds feature flag state.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from Defaults overlaid with overrides.
func New(overrides map[string]bool) *Registry {
	flags := Defaults()
	maps.Copy(flags, overrides)
	r := &Registry{flags: flags}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(flags), "enabled", r.EnabledNames())
	return r
}

// Enabled returns true if the named flag is enabled. Unknown flags and a nil
// registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name)
		return false
	}
	return value
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}

// EnabledNames returns the enabled flags in sorted order.
func (r *Registry) EnabledNames() []string {
	var out []string
	for name, on := range r.All() {
		if on {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
