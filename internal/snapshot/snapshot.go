// Package snapshot reads upstream persistence dumps from disk and writes
// circular coordinate results back out, as YAML or JSON.
package snapshot

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/TrevorS/circcoords"
)

// Format is the on-disk encoding of a snapshot or result file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the encoding from a file extension. Anything that is
// not .json is treated as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// ParseFormat resolves a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.Errorf("unknown format %q (want yaml or json)", name)
}

// Pair is one persistence pair.
type Pair struct {
	Birth float64 `yaml:"birth" json:"birth"`
	Death float64 `yaml:"death" json:"death"`
}

// File is the serialized form of an upstream snapshot. Distances come either
// as explicit matrices or as a point cloud plus landmark indices, in which
// case they are computed with Metric on load.
type File struct {
	FieldPrime int `yaml:"field_prime,omitempty" json:"field_prime,omitempty"`

	Landmarks []int       `yaml:"landmarks,omitempty" json:"landmarks,omitempty"`
	Points    [][]float64 `yaml:"points,omitempty" json:"points,omitempty"`
	Metric    string      `yaml:"metric,omitempty" json:"metric,omitempty"`

	DistLandmarkLandmark [][]float64 `yaml:"dist_landmark_landmark,omitempty" json:"dist_landmark_landmark,omitempty"`
	DistLandmarkData     [][]float64 `yaml:"dist_landmark_data,omitempty" json:"dist_landmark_data,omitempty"`

	Diagram []Pair `yaml:"diagram" json:"diagram"`

	// Cocycles holds one cocycle per diagram pair as [i, j, value] triples.
	Cocycles [][][]int `yaml:"cocycles" json:"cocycles"`
}

// Decode reads a File in the given format.
func Decode(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "decoding YAML snapshot")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return nil, errors.Wrap(err, "decoding JSON snapshot")
		}
	default:
		return nil, errors.Errorf("unknown format %q", format)
	}
	return &f, nil
}

// Read decodes the snapshot file at path.
func Read(path string) (*File, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening snapshot %s", path)
	}
	defer fd.Close()
	f, err := Decode(fd, FormatFromPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return f, nil
}

// Load reads the snapshot file at path and converts it for the pipeline.
// workers controls distance computation for point-cloud files.
func Load(path string, workers int) (*circcoords.Snapshot, error) {
	f, err := Read(path)
	if err != nil {
		return nil, err
	}
	snap, err := f.Snapshot(workers)
	if err != nil {
		return nil, errors.Wrapf(err, "converting %s", path)
	}
	return snap, nil
}

// Snapshot converts f into the pipeline's input form.
func (f *File) Snapshot(workers int) (*circcoords.Snapshot, error) {
	snap := &circcoords.Snapshot{
		Landmarks:  f.Landmarks,
		FieldPrime: f.FieldPrime,
	}

	switch {
	case len(f.Points) > 0:
		if len(f.DistLandmarkLandmark) > 0 || len(f.DistLandmarkData) > 0 {
			return nil, errors.New("snapshot has both points and distance matrices")
		}
		metric, err := circcoords.MetricByName(f.Metric)
		if err != nil {
			return nil, err
		}
		distLL, distLD, err := circcoords.LandmarkDistances(f.Points, f.Landmarks, metric, workers)
		if err != nil {
			return nil, err
		}
		snap.M, snap.N = len(f.Landmarks), len(f.Points)
		snap.DistLandmarkLandmark, snap.DistLandmarkData = distLL, distLD

	case len(f.DistLandmarkLandmark) > 0:
		m := len(f.DistLandmarkLandmark)
		distLL, _, err := flatten(f.DistLandmarkLandmark, m)
		if err != nil {
			return nil, errors.Wrap(err, "dist_landmark_landmark")
		}
		if len(f.DistLandmarkData) != m {
			return nil, errors.Errorf("dist_landmark_data has %d rows, want %d", len(f.DistLandmarkData), m)
		}
		distLD, n, err := flatten(f.DistLandmarkData, -1)
		if err != nil {
			return nil, errors.Wrap(err, "dist_landmark_data")
		}
		snap.M, snap.N = m, n
		snap.DistLandmarkLandmark, snap.DistLandmarkData = distLL, distLD

	default:
		return nil, errors.New("snapshot has neither points nor distance matrices")
	}

	snap.Diagram = circcoords.Diagram{
		Births: make([]float64, len(f.Diagram)),
		Deaths: make([]float64, len(f.Diagram)),
	}
	for i, p := range f.Diagram {
		snap.Diagram.Births[i] = p.Birth
		snap.Diagram.Deaths[i] = p.Death
	}

	snap.Cocycles = make([]circcoords.Cochain, len(f.Cocycles))
	for k, triples := range f.Cocycles {
		c := make(circcoords.Cochain, len(triples))
		for _, t := range triples {
			if len(t) != 3 {
				return nil, errors.Errorf("cocycle %d: entry %v is not an [i, j, value] triple", k, t)
			}
			e := circcoords.Edge{I: t[0], J: t[1]}
			if _, dup := c[e]; dup {
				return nil, errors.Errorf("cocycle %d: duplicate edge (%d, %d)", k, e.I, e.J)
			}
			c[e] = t[2]
		}
		snap.Cocycles[k] = c
	}
	return snap, nil
}

// flatten packs rows into a row-major slice. cols < 0 takes the width of the
// first row. Returns the column count.
func flatten(rows [][]float64, cols int) ([]float64, int, error) {
	if cols < 0 {
		cols = 0
		if len(rows) > 0 {
			cols = len(rows[0])
		}
	}
	out := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, 0, errors.Errorf("row %d has %d columns, want %d", i, len(row), cols)
		}
		out = append(out, row...)
	}
	return out, cols, nil
}

// Output is the serialized form of a pipeline result. Uncovered points have a
// null angle.
type Output struct {
	CoveringRadius float64    `yaml:"covering_radius" json:"covering_radius"`
	Coverage       float64    `yaml:"coverage" json:"coverage"`
	Interval       Pair       `yaml:"interval" json:"interval"`
	Solver         string     `yaml:"solver" json:"solver"`
	Components     int        `yaml:"components" json:"components"`
	Uncovered      []int      `yaml:"uncovered,omitempty" json:"uncovered,omitempty"`
	Warnings       []string   `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Angles         []*float64 `yaml:"angles" json:"angles"`
}

// NewOutput converts res for serialization.
func NewOutput(res *circcoords.Result) *Output {
	out := &Output{
		CoveringRadius: res.CoveringRadius,
		Coverage:       res.Coverage,
		Interval:       Pair{Birth: res.Interval.Birth, Death: res.Interval.Death},
		Solver:         string(res.Solver),
		Components:     res.Components,
		Uncovered:      res.Uncovered,
		Angles:         make([]*float64, len(res.Angles)),
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	for i := range res.Angles {
		if !math.IsNaN(res.Angles[i]) {
			a := res.Angles[i]
			out.Angles[i] = &a
		}
	}
	return out
}

// Encode writes v in the given format.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "flushing YAML")
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encoding JSON")
	}
	return errors.Errorf("unknown format %q", format)
}

// Save writes v to path, choosing the format from the extension.
func Save(path string, v any) error {
	fd, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := Encode(fd, FormatFromPath(path), v); err != nil {
		fd.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(fd.Close(), "closing %s", path)
}
