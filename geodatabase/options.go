package geodatabase

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/foundatron/MobileGeodatabaseLib/geometry"
)

// Option configures a DB at Open time, following the functional-options
// shape the driver this package is modeled on uses for its Connector.
type Option func(*config)

type config struct {
	log              *slog.Logger
	defaultCS        geometry.CoordinateSystem
	registerer       prometheus.Registerer
	decodeBestEffort bool
}

func newConfig() *config {
	return &config{
		log:              slog.Default(),
		defaultCS:        geometry.DefaultCoordinateSystem(),
		decodeBestEffort: true,
	}
}

// WithLogger overrides the default (slog.Default) logger used for per-row
// decode diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithDefaultCoordinateSystem overrides the coordinate system used for
// tables whose metadata cannot be resolved from GDB_Items.
func WithDefaultCoordinateSystem(cs geometry.CoordinateSystem) Option {
	return func(c *config) { c.defaultCS = cs }
}

// WithMetrics registers a Prometheus collector exposing decode counters,
// the table count and per-table row counts against reg. If reg is nil, no collector is registered.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) { c.registerer = reg }
}

// WithStrictDecoding disables the default per-row decode failure policy
// (mark feature geometry-less and log) in favor of surfacing decode
// errors as hard per-row errors from Rows.
func WithStrictDecoding() Option {
	return func(c *config) { c.decodeBestEffort = false }
}
