package snapshot

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrevorS/circcoords"
)

const matrixYAML = `
field_prime: 41
dist_landmark_landmark:
  - [0, 1]
  - [1, 0]
dist_landmark_data:
  - [0.0, 0.3, 0.9]
  - [0.5, 0.2, 0.1]
diagram:
  - {birth: 0.3, death: 0.8}
  - {birth: 0.1, death: 0.2}
cocycles:
  - [[0, 1, 1]]
  - []
`

const pointsJSON = `{
  "field_prime": 41,
  "points": [[0, 0], [3, 0], [0, 4], [3, 4]],
  "landmarks": [0, 3],
  "metric": "manhattan",
  "diagram": [{"birth": 1, "death": 9}],
  "cocycles": [[[1, 0, 40]]]
}`

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("snap.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("/tmp/SNAP.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("snap.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("snap"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("toml")
	assert.Error(t, err)
}

func TestDecode_MatrixYAML(t *testing.T) {
	f, err := Decode(strings.NewReader(matrixYAML), FormatYAML)
	require.NoError(t, err)

	snap, err := f.Snapshot(1)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.M)
	assert.Equal(t, 3, snap.N)
	assert.Equal(t, 41, snap.FieldPrime)
	assert.Equal(t, []float64{0, 1, 1, 0}, snap.DistLandmarkLandmark)
	assert.Equal(t, []float64{0, 0.3, 0.9, 0.5, 0.2, 0.1}, snap.DistLandmarkData)
	assert.Equal(t, []float64{0.3, 0.1}, snap.Diagram.Births)
	assert.Equal(t, []float64{0.8, 0.2}, snap.Diagram.Deaths)
	require.Len(t, snap.Cocycles, 2)
	assert.Equal(t, circcoords.Cochain{{I: 0, J: 1}: 1}, snap.Cocycles[0])
	assert.Empty(t, snap.Cocycles[1])
}

func TestDecode_PointsJSON(t *testing.T) {
	f, err := Decode(strings.NewReader(pointsJSON), FormatJSON)
	require.NoError(t, err)

	snap, err := f.Snapshot(2)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.M)
	assert.Equal(t, 4, snap.N)
	assert.Equal(t, []int{0, 3}, snap.Landmarks)
	// Manhattan distance between (0,0) and (3,4).
	assert.Equal(t, []float64{0, 7, 7, 0}, snap.DistLandmarkLandmark)
	assert.Equal(t, []float64{0, 3, 4, 7, 7, 4, 3, 0}, snap.DistLandmarkData)
	assert.Equal(t, circcoords.Cochain{{I: 1, J: 0}: 40}, snap.Cocycles[0])
}

func TestDecode_InvalidInput(t *testing.T) {
	_, err := Decode(strings.NewReader("diagram: [oops"), FormatYAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("{"), FormatJSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(""), Format("xml"))
	assert.Error(t, err)
}

func TestSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{"empty", File{}},
		{"points and matrices", File{
			Points:               [][]float64{{0}},
			Landmarks:            []int{0},
			DistLandmarkLandmark: [][]float64{{0}},
		}},
		{"unknown metric", File{Points: [][]float64{{0}}, Landmarks: []int{0}, Metric: "hamming"}},
		{"landmark out of range", File{Points: [][]float64{{0}}, Landmarks: []int{3}}},
		{"non-square landmark matrix", File{
			DistLandmarkLandmark: [][]float64{{0, 1}, {1}},
			DistLandmarkData:     [][]float64{{0}, {1}},
		}},
		{"data rows mismatch", File{
			DistLandmarkLandmark: [][]float64{{0}},
			DistLandmarkData:     [][]float64{{0}, {1}},
		}},
		{"ragged data", File{
			DistLandmarkLandmark: [][]float64{{0, 1}, {1, 0}},
			DistLandmarkData:     [][]float64{{0, 1}, {1}},
		}},
		{"short triple", File{
			DistLandmarkLandmark: [][]float64{{0}},
			DistLandmarkData:     [][]float64{{0}},
			Diagram:              []Pair{{0, 1}},
			Cocycles:             [][][]int{{{0, 1}}},
		}},
		{"duplicate edge", File{
			DistLandmarkLandmark: [][]float64{{0, 1}, {1, 0}},
			DistLandmarkData:     [][]float64{{0}, {1}},
			Diagram:              []Pair{{0, 1}},
			Cocycles:             [][][]int{{{0, 1, 1}, {0, 1, 2}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.file.Snapshot(1)
			assert.Error(t, err)
		})
	}
}

func TestLoad_FromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(matrixYAML), 0o644))

	snap, err := Load(path, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.M)

	_, err = Load(filepath.Join(dir, "missing.yaml"), 1)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)), "expected not-exist cause, got %v", err)
}

func TestLoad_ComputeEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(matrixYAML), 0o644))

	snap, err := Load(path, 1)
	require.NoError(t, err)

	cfg := circcoords.DefaultConfig()
	cfg.CoverPercentile = 1
	res, err := circcoords.Compute([]int{0}, snap, cfg)
	require.NoError(t, err)

	// r = 0.3: point 0 is covered by landmark 0, points 1 and 2 by landmark 1.
	assert.Equal(t, 0.3, res.CoveringRadius)
	assert.Equal(t, []int{0, 1, 1}, res.Charts)
	assert.Zero(t, res.UncoveredPointCount)
}

func TestNewOutput(t *testing.T) {
	res := &circcoords.Result{
		Angles:         []float64{1.5, math.NaN(), 0},
		CoveringRadius: 0.4,
		Coverage:       0.7,
		Interval:       circcoords.Interval{Birth: 0.4, Death: 1},
		Uncovered:      []int{1},
		Solver:         circcoords.SolverSVD,
		Components:     1,
		Warnings:       []error{&circcoords.DegenerateCoverWarning{Uncovered: 1, Radius: 0.4}},
	}
	out := NewOutput(res)

	require.Len(t, out.Angles, 3)
	require.NotNil(t, out.Angles[0])
	assert.Equal(t, 1.5, *out.Angles[0])
	assert.Nil(t, out.Angles[1])
	require.NotNil(t, out.Angles[2])
	assert.Equal(t, "svd", out.Solver)
	assert.Equal(t, Pair{Birth: 0.4, Death: 1}, out.Interval)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "not covered")
}

func TestEncode_RoundTrip(t *testing.T) {
	src, err := Decode(strings.NewReader(matrixYAML), FormatYAML)
	require.NoError(t, err)

	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, format, src))

			got, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, src, got)
		})
	}
}

func TestEncode_OutputJSONNullAngles(t *testing.T) {
	a := 2.0
	out := &Output{Angles: []*float64{&a, nil}}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, out))
	assert.Contains(t, buf.String(), `"angles": [`)
	assert.Contains(t, buf.String(), "null")
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	a := 1.0
	out := &Output{Solver: "lsqr", Angles: []*float64{&a}}

	for _, name := range []string{"out.yaml", "out.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, out))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "lsqr")
	}

	assert.Error(t, Save(filepath.Join(dir, "missing", "out.yaml"), out))
}
