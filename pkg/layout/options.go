package layout

import errs "github.com/matzehuels/roadmap/pkg/errors"

// Default layout constants. They match the node footprint of the roadmap
// editor canvas.
const (
	DefaultNodeWidth  = 220.0
	DefaultNodeHeight = 150.0
	DefaultNodeSep    = 100.0
	DefaultRankSep    = 150.0
	DefaultSweeps     = 12

	DefaultIterations  = 100
	DefaultIdealLength = 300.0
	DefaultCooling     = 0.1
	DefaultDamping     = 0.8
	DefaultSeedWidth   = 800.0
	DefaultSeedHeight  = 600.0
	DefaultOffset      = 100.0
	DefaultSeed        = uint64(42)
)

// Options configures both layout algorithms. Zero fields take the defaults
// above, so the zero value is ready to use.
type Options struct {
	// NodeWidth and NodeHeight are the fixed box size of every node in the
	// hierarchical layout. Default: 220 x 150.
	NodeWidth  float64 `json:"node_width,omitempty" toml:"node_width"`
	NodeHeight float64 `json:"node_height,omitempty" toml:"node_height"`

	// NodeSep is the horizontal gap between boxes in a rank. Default: 100.
	NodeSep float64 `json:"node_sep,omitempty" toml:"node_sep"`

	// RankSep is the vertical gap between ranks. Default: 150.
	RankSep float64 `json:"rank_sep,omitempty" toml:"rank_sep"`

	// Margin shifts the whole hierarchical layout right and down. Default: 0.
	Margin float64 `json:"margin,omitempty" toml:"margin"`

	// Sweeps is the number of down/up barycenter sweep pairs. Default: 12.
	Sweeps int `json:"sweeps,omitempty" toml:"sweeps"`

	// Iterations is the number of force simulation steps. Default: 100.
	Iterations int `json:"iterations,omitempty" toml:"iterations"`

	// IdealLength is the spring constant k: the distance at which attraction
	// and repulsion between two linked nodes balance. Default: 300.
	IdealLength float64 `json:"ideal_length,omitempty" toml:"ideal_length"`

	// Cooling scales every force before it is added to a velocity.
	// Default: 0.1.
	Cooling float64 `json:"cooling,omitempty" toml:"cooling"`

	// Damping multiplies every velocity after each step. Default: 0.8.
	Damping float64 `json:"damping,omitempty" toml:"damping"`

	// MaxSpeed caps the velocity magnitude of a node. Default: IdealLength.
	MaxSpeed float64 `json:"max_speed,omitempty" toml:"max_speed"`

	// SeedWidth and SeedHeight bound the box in which nodes without a
	// position are placed before simulation. Default: 800 x 600.
	SeedWidth  float64 `json:"seed_width,omitempty" toml:"seed_width"`
	SeedHeight float64 `json:"seed_height,omitempty" toml:"seed_height"`

	// Offset is where the top-left-most node lands after the force layout is
	// normalized. Default: 100.
	Offset float64 `json:"offset,omitempty" toml:"offset"`

	// Seed drives the random initial placement. Default: 42.
	Seed uint64 `json:"seed,omitempty" toml:"seed"`
}

// DefaultOptions returns Options with every field set to its default.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults returns a copy of o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.NodeWidth == 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.NodeSep == 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.RankSep == 0 {
		o.RankSep = DefaultRankSep
	}
	if o.Sweeps == 0 {
		o.Sweeps = DefaultSweeps
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.IdealLength == 0 {
		o.IdealLength = DefaultIdealLength
	}
	if o.Cooling == 0 {
		o.Cooling = DefaultCooling
	}
	if o.Damping == 0 {
		o.Damping = DefaultDamping
	}
	if o.MaxSpeed == 0 {
		o.MaxSpeed = o.IdealLength
	}
	if o.SeedWidth == 0 {
		o.SeedWidth = DefaultSeedWidth
	}
	if o.SeedHeight == 0 {
		o.SeedHeight = DefaultSeedHeight
	}
	if o.Offset == 0 {
		o.Offset = DefaultOffset
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	return o
}

// Validate rejects negative sizes and out-of-range coefficients.
func (o Options) Validate() error {
	switch {
	case o.NodeWidth < 0 || o.NodeHeight < 0:
		return errs.New(errs.ErrCodeInvalidInput, "node size must not be negative")
	case o.NodeSep < 0 || o.RankSep < 0 || o.Margin < 0:
		return errs.New(errs.ErrCodeInvalidInput, "separation and margin must not be negative")
	case o.Sweeps < 0 || o.Iterations < 0:
		return errs.New(errs.ErrCodeInvalidInput, "sweeps and iterations must not be negative")
	case o.IdealLength < 0 || o.MaxSpeed < 0:
		return errs.New(errs.ErrCodeInvalidInput, "ideal length and max speed must not be negative")
	case o.Cooling < 0 || o.Cooling > 1:
		return errs.New(errs.ErrCodeInvalidInput, "cooling must be in [0, 1], got %g", o.Cooling)
	case o.Damping < 0 || o.Damping >= 1:
		return errs.New(errs.ErrCodeInvalidInput, "damping must be in [0, 1), got %g", o.Damping)
	}
	return nil
}
