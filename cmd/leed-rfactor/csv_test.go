package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rfactor "github.com/tphakala/go-leed-rfactor"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "beams.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadBeamTable(t *testing.T) {
	path := writeTable(t, `# comment line
energy,beam10,beam11
50.0,1.0,
50.5,1.1,2.0
51.0,1.2,2.1
51.5,,2.2
`)
	set, err := readBeamTable(path)
	require.NoError(t, err)

	assert.Equal(t, []float64{50, 50.5, 51, 51.5}, set.Energies)
	require.Equal(t, 2, set.NBeams())
	assert.Equal(t, rfactor.Span{Start: 0, Len: 3}, set.Spans[0])
	assert.Equal(t, rfactor.Span{Start: 1, Len: 3}, set.Spans[1])
	assert.Equal(t, 1.1, set.Intensity[0][1])
	assert.Equal(t, 2.2, set.Intensity[1][3])
}

func TestReadBeamTableNoHeader(t *testing.T) {
	path := writeTable(t, "50,1\n51,2\n52,3\n")
	set, err := readBeamTable(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 51, 52}, set.Energies)
	assert.Equal(t, rfactor.Span{Start: 0, Len: 3}, set.Spans[0])
}

func TestReadBeamTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"interior gap", "50,1\n51,\n52,3\n"},
		{"bad intensity", "50,1\n51,oops\n"},
		{"bad energy", "50,1\nnope,2\n52,3\n"},
		{"ragged row", "50,1,2\n51,1\n"},
		{"no data", "energy,beam\n"},
		{"decreasing energies", "52,1\n51,2\n50,3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readBeamTable(writeTable(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestReadBeamTableMissing(t *testing.T) {
	_, err := readBeamTable(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestColumnSpan(t *testing.T) {
	tests := []struct {
		name    string
		defined []bool
		want    rfactor.Span
		wantErr bool
	}{
		{"all defined", []bool{true, true, true}, rfactor.Span{Start: 0, Len: 3}, false},
		{"leading blanks", []bool{false, false, true, true}, rfactor.Span{Start: 2, Len: 2}, false},
		{"trailing blanks", []bool{true, true, false}, rfactor.Span{Start: 0, Len: 2}, false},
		{"both ends", []bool{false, true, true, false}, rfactor.Span{Start: 1, Len: 2}, false},
		{"all blank", []bool{false, false}, rfactor.Span{}, false},
		{"gap", []bool{true, false, true}, rfactor.Span{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := columnSpan(tt.defined)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
