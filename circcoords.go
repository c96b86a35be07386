package circcoords

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

const (
	// DefaultFieldPrime is the homology coefficient field used when none is given.
	DefaultFieldPrime = 41

	defaultTolerance = 1e-10
)

// Config controls the circular coordinates pipeline and the upstream
// persistence computation it is fed by.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// FieldPrime is the coefficient field Z/pZ of the cocycles. Must be a
	// prime. Default: 41.
	FieldPrime int

	// MaxHomologyDimension is passed to the upstream persistence engine.
	// Only dimension-1 classes are used here. Must be >= 1. Default: 1.
	MaxHomologyDimension int

	// LandmarkCount is the number of landmarks requested from the upstream
	// engine. The engine may return fewer. Must be >= 1. Default: 100.
	LandmarkCount int

	// CoverPercentile interpolates the covering radius between the combined
	// interval endpoints (see [CoveringRadius]). Must be in [0, 1].
	// Default: 0.99.
	CoverPercentile float64

	// Weighted weights each edge of the least-squares problem by its landmark
	// distance. Default: false.
	Weighted bool

	// Solver selects the least-squares method. "auto" uses a dense SVD for
	// small systems and LSQR otherwise. Default: "auto".
	Solver Solver

	// Bump is the partition-of-unity bump function. Default: "linear".
	Bump Bump

	// Tolerance is the SVD rank cutoff and LSQR stopping tolerance.
	// Must be >= 0. Default: 1e-10.
	Tolerance float64

	// MaxIterations caps LSQR. 0 means 4·m (at least 32). Must be >= 0.
	MaxIterations int

	// Logger receives stage diagnostics and data-quality warnings.
	// Default: a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		FieldPrime:           DefaultFieldPrime,
		MaxHomologyDimension: 1,
		LandmarkCount:        100,
		CoverPercentile:      0.99,
		Solver:               SolverAuto,
		Bump:                 BumpLinear,
		Tolerance:            defaultTolerance,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
// CoverPercentile and Weighted have meaningful zero values and are left alone.
func applyDefaults(cfg *Config) {
	if cfg.FieldPrime == 0 {
		cfg.FieldPrime = DefaultFieldPrime
	}
	if cfg.MaxHomologyDimension == 0 {
		cfg.MaxHomologyDimension = 1
	}
	if cfg.LandmarkCount == 0 {
		cfg.LandmarkCount = 100
	}
	if cfg.Solver == "" {
		cfg.Solver = SolverAuto
	}
	if cfg.Bump == "" {
		cfg.Bump = BumpLinear
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = defaultTolerance
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.FieldPrime < 2 {
		return fmt.Errorf("%w, got %d", ErrInvalidPrime, cfg.FieldPrime)
	}
	if !isPrime(cfg.FieldPrime) {
		return fmt.Errorf("circcoords: FieldPrime must be prime, got %d", cfg.FieldPrime)
	}
	if cfg.MaxHomologyDimension < 1 {
		return fmt.Errorf("circcoords: MaxHomologyDimension must be >= 1, got %d", cfg.MaxHomologyDimension)
	}
	if cfg.LandmarkCount < 1 {
		return fmt.Errorf("circcoords: LandmarkCount must be >= 1, got %d", cfg.LandmarkCount)
	}
	if math.IsNaN(cfg.CoverPercentile) || cfg.CoverPercentile < 0 || cfg.CoverPercentile > 1 {
		return fmt.Errorf("circcoords: CoverPercentile must be in [0, 1], got %f", cfg.CoverPercentile)
	}
	switch cfg.Solver {
	case SolverAuto, SolverSVD, SolverLSQR:
		// valid
	default:
		return fmt.Errorf("circcoords: invalid Solver %q", cfg.Solver)
	}
	if !validBump(cfg.Bump) {
		return fmt.Errorf("circcoords: invalid Bump %q", cfg.Bump)
	}
	if cfg.Tolerance < 0 {
		return fmt.Errorf("circcoords: Tolerance must be >= 0, got %g", cfg.Tolerance)
	}
	if cfg.MaxIterations < 0 {
		return fmt.Errorf("circcoords: MaxIterations must be >= 0, got %d", cfg.MaxIterations)
	}
	return nil
}

func isPrime(p int) bool {
	if p < 2 {
		return false
	}
	for d := 2; d*d <= p; d++ {
		if p%d == 0 {
			return false
		}
	}
	return true
}

// Snapshot is one consistent output of the upstream persistence computation.
// It is read-only for the duration of a run.
type Snapshot struct {
	// Landmarks optionally records which data rows were chosen as landmarks.
	Landmarks []int

	// M is the number of landmarks, N the number of data points.
	M, N int

	// DistLandmarkLandmark is flat row-major m×m, symmetric with zero diagonal.
	// Only the upper triangle is read.
	DistLandmarkLandmark []float64

	// DistLandmarkData is flat row-major m×n.
	DistLandmarkData []float64

	// Diagram holds the dimension-1 persistence pairs.
	Diagram Diagram

	// Cocycles holds one representative cocycle per persistence pair, with
	// values in [0, FieldPrime).
	Cocycles []Cochain

	// FieldPrime is the field the cocycles were computed over. 0 means the
	// run's Config.FieldPrime.
	FieldPrime int
}

// validate checks the snapshot's shape and content against the field p.
func (s *Snapshot) validate(p int) error {
	if s.M < 1 {
		return fmt.Errorf("circcoords: snapshot has %d landmarks, need at least 1", s.M)
	}
	if s.N < 0 {
		return fmt.Errorf("circcoords: snapshot has negative point count %d", s.N)
	}
	if s.FieldPrime != 0 && s.FieldPrime != p {
		return fmt.Errorf("circcoords: snapshot computed over Z/%d, config expects Z/%d", s.FieldPrime, p)
	}
	if s.Landmarks != nil && len(s.Landmarks) != s.M {
		return fmt.Errorf("circcoords: snapshot lists %d landmark indices for M=%d", len(s.Landmarks), s.M)
	}
	if len(s.DistLandmarkLandmark) != s.M*s.M {
		return fmt.Errorf("circcoords: landmark distance matrix length %d does not match m*m = %d (m=%d)",
			len(s.DistLandmarkLandmark), s.M*s.M, s.M)
	}
	if len(s.DistLandmarkData) != s.M*s.N {
		return fmt.Errorf("circcoords: landmark-data distance matrix length %d does not match m*n = %d (m=%d, n=%d)",
			len(s.DistLandmarkData), s.M*s.N, s.M, s.N)
	}
	for _, dist := range [][]float64{s.DistLandmarkLandmark, s.DistLandmarkData} {
		for _, d := range dist {
			if math.IsNaN(d) || d < 0 {
				return fmt.Errorf("circcoords: distances must be non-negative, got %g", d)
			}
		}
	}
	if len(s.Diagram.Births) != len(s.Diagram.Deaths) {
		return fmt.Errorf("circcoords: diagram has %d births but %d deaths", len(s.Diagram.Births), len(s.Diagram.Deaths))
	}
	if len(s.Cocycles) != s.Diagram.Len() {
		return fmt.Errorf("circcoords: %d cocycles for %d persistence pairs", len(s.Cocycles), s.Diagram.Len())
	}
	for i, c := range s.Cocycles {
		if err := ValidateCochain(c, s.M, p); err != nil {
			return fmt.Errorf("cocycle %d: %w", i, err)
		}
	}
	return nil
}

// Result contains the output of one circular coordinates run.
type Result struct {
	// Angles holds one angle in [0, 2π) per data point, NaN for points no
	// landmark covers.
	Angles []float64

	// CoveringRadius is the effective radius r of the open cover.
	CoveringRadius float64

	// Coverage is the smallest radius covering every data point.
	Coverage float64

	// Interval is the combined persistence interval of the chosen generators.
	Interval Interval

	// UncoveredPointCount is len(Uncovered).
	UncoveredPointCount int

	// Uncovered lists the indices of points covered by no landmark.
	Uncovered []int

	// Charts[x] is the reference landmark of point x, or -1.
	Charts []int

	// Tau is the per-landmark harmonic potential.
	Tau []float64

	// Theta is the smoothed transition cocycle on the kept edges.
	Theta *TransitionCocycle

	// Components counts connected components of the landmark graph at r.
	Components int

	// Solver is the least-squares method actually used.
	Solver Solver

	// Warnings holds non-fatal data-quality issues:
	// *DegenerateCoverWarning and *IllConditionedSystemWarning.
	Warnings []error
}

// Compute runs the circular coordinates pipeline on one upstream snapshot
// using the sum of the selected cohomology generators. Returns ErrSelection
// for an empty selection, ErrPrecursorNotReady for a nil snapshot and
// ErrInvalidInterval when the chosen generators are never alive together.
// Every call allocates its own intermediate state.
func Compute(selected []int, snap *Snapshot, cfg Config) (*Result, error) {
	if len(selected) == 0 {
		return nil, ErrSelection
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: no snapshot", ErrPrecursorNotReady)
	}
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	p := cfg.FieldPrime
	if err := snap.validate(p); err != nil {
		return nil, err
	}
	log := cfg.Logger
	m, n := snap.M, snap.N
	if m != cfg.LandmarkCount {
		log.Debug("upstream landmark count differs from requested",
			zap.Int("requested", cfg.LandmarkCount), zap.Int("actual", m))
	}

	// Step 1: representative cocycle as a formal sum of the chosen ones.
	cocycle, iv, err := CombineCocycles(selected, snap.Diagram, snap.Cocycles, p)
	if err != nil {
		return nil, err
	}

	// Step 2: covering radius.
	coverage := Coverage(snap.DistLandmarkData, m, n)
	r, err := CoveringRadius(iv, coverage, cfg.CoverPercentile)
	if err != nil {
		return nil, err
	}
	log.Debug("covering radius",
		zap.Float64("birth", iv.Birth), zap.Float64("death", iv.Death),
		zap.Float64("coverage", coverage), zap.Float64("radius", r))

	// Step 3: integer lift and harmonic smoothing over the landmark graph.
	lifted := LiftToInteger(cocycle, p)
	h, err := SolveHarmonic(snap.DistLandmarkLandmark, m, r, lifted, HarmonicOptions{
		Weighted:      cfg.Weighted,
		Solver:        cfg.Solver,
		Tolerance:     cfg.Tolerance,
		MaxIterations: cfg.MaxIterations,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("harmonic smoothing",
		zap.Int("edges", len(h.Edges)), zap.Int("components", h.Components),
		zap.String("solver", string(h.Solver)), zap.Int("iterations", h.Iterations),
		zap.Float64("residual", h.Residual))
	if !h.Converged {
		log.Warn("LSQR reached its iteration cap", zap.Int("iterations", h.Iterations))
	}

	// Step 4: open cover and partition of unity.
	pou, err := BuildPartitionOfUnity(snap.DistLandmarkData, m, n, r, cfg.Bump)
	if err != nil {
		return nil, err
	}

	// Step 5: classifying map.
	angles := ClassifyingMap(h.Tau, h.Theta, pou)

	res := &Result{
		Angles:              angles,
		CoveringRadius:      r,
		Coverage:            coverage,
		Interval:            iv,
		UncoveredPointCount: len(pou.Uncovered),
		Uncovered:           pou.Uncovered,
		Charts:              pou.Charts,
		Tau:                 h.Tau,
		Theta:               h.Theta,
		Components:          h.Components,
		Solver:              h.Solver,
	}
	if h.Components > 1 {
		w := &IllConditionedSystemWarning{Components: h.Components, Edges: len(h.Edges), Landmarks: m}
		log.Warn(w.Error())
		res.Warnings = append(res.Warnings, w)
	}
	if len(pou.Uncovered) > 0 {
		w := &DegenerateCoverWarning{Uncovered: len(pou.Uncovered), Radius: r}
		log.Warn(w.Error())
		res.Warnings = append(res.Warnings, w)
	}
	return res, nil
}

// ComputeCircularCoordinates is the flat form of [Compute]: it takes the
// upstream outputs directly. distLL is flat m×m and distLD flat m×n, both
// row-major. Other settings take their [DefaultConfig] values.
func ComputeCircularCoordinates(
	selected []int,
	dgm Diagram,
	cocycles []Cochain,
	distLL, distLD []float64,
	m, n int,
	fieldPrime int,
	coverPercentile float64,
	weighted bool,
) (*Result, error) {
	if len(selected) == 0 {
		return nil, ErrSelection
	}
	cfg := DefaultConfig()
	cfg.FieldPrime = fieldPrime
	cfg.CoverPercentile = coverPercentile
	cfg.Weighted = weighted
	cfg.LandmarkCount = max(m, 1)
	if fieldPrime < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidPrime, fieldPrime)
	}
	return Compute(selected, &Snapshot{
		M:                    m,
		N:                    n,
		DistLandmarkLandmark: distLL,
		DistLandmarkData:     distLD,
		Diagram:              dgm,
		Cocycles:             cocycles,
		FieldPrime:           fieldPrime,
	}, cfg)
}

// HasWarning reports whether res carries a warning of the given target type,
// in the manner of errors.As.
func (res *Result) HasWarning(target any) bool {
	for _, w := range res.Warnings {
		if errors.As(w, target) {
			return true
		}
	}
	return false
}
