package pgenv

import "github.com/giantswarm/pgenv/internal/core"

// serverConfig holds configuration for a Server. This unexported type wraps
// core.Config via embedding, keeping internal/core types out of the public
// API signature while avoiding field-by-field duplication.
//
// version and registry are resolved into Platform, Registry and Ports by
// New, after every option has been applied.
type serverConfig struct {
	core.Config

	version  Version
	registry *Registry
}

// toCoreConfig returns the embedded core.Config.
func (c serverConfig) toCoreConfig() core.Config {
	return c.Config
}
