package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample3D = `# t px py pz vx vy vz
0.0  1.0  0.1  0.0  0.01  0.001  0.0
0.1  1.2 -0.1  0.0  0.02 -0.002  0.0

0.2  1.1D+00  0.2  0.0  0.03  0.003  0.0
`

func TestParseForces3D(t *testing.T) {
	data, err := ParseForces(strings.NewReader(sample3D), Layout3D)
	require.NoError(t, err)

	assert.Equal(t, 3, data.NumSamples)
	assert.Empty(t, data.ParseErrors)

	px, ok := data.Column(ColPressureForceX)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{1.0, 1.2, 1.1}, px, 1e-12)

	tm, ok := data.Column(ColTime)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{0, 0.1, 0.2}, tm, 1e-12)
}

func TestParseForcesSkipsBadRows(t *testing.T) {
	input := "0.0 1 2 3 4\n0.1 1 2\n0.2 x 2 3 4\n0.3 1 2 3 4 99\n"

	data, err := ParseForces(strings.NewReader(input), Layout2D)
	require.NoError(t, err)

	assert.Equal(t, 2, data.NumSamples)
	require.Len(t, data.ParseErrors, 2)
	assert.Contains(t, data.ParseErrors[0], "line 2")
	assert.Contains(t, data.ParseErrors[1], "line 3")

	vy, _ := data.Column(ColViscousForceY)
	assert.Equal(t, []float64{4, 4}, vy)
}

func TestParseForcesUnknownLayout(t *testing.T) {
	_, err := ParseForces(strings.NewReader(""), Layout("4d"))
	assert.Error(t, err)
}

func TestParseForceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fort.9")
	require.NoError(t, os.WriteFile(path, []byte(sample3D), 0644))

	data, err := ParseForceFile(path, Layout3D)
	require.NoError(t, err)
	assert.Equal(t, 3, data.NumSamples)

	_, err = ParseForceFile(filepath.Join(t.TempDir(), "missing"), Layout3D)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestForceDataSkipAndAddColumn(t *testing.T) {
	data, err := ParseForces(strings.NewReader(sample3D), Layout3D)
	require.NoError(t, err)

	tail := data.Skip(1)
	assert.Equal(t, 2, tail.NumSamples)
	assert.Equal(t, 3, data.NumSamples)
	tm, _ := tail.Column(ColTime)
	assert.InDeltaSlice(t, []float64{0.1, 0.2}, tm, 1e-12)

	assert.Equal(t, 0, data.Skip(10).NumSamples)

	require.NoError(t, tail.AddColumn("extra", []float64{1, 2}))
	assert.Contains(t, tail.Columns, "extra")
	assert.Error(t, tail.AddColumn("short", []float64{1}))
}
