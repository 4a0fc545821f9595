package tile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Tile
		wantErr  bool
	}{
		{
			name:     "number run",
			input:    "123m",
			expected: []Tile{New(Man, 1), New(Man, 2), New(Man, 3)},
		},
		{
			name:     "red five",
			input:    "406p",
			expected: []Tile{New(Pin, 4), NewRed(Pin), New(Pin, 6)},
		},
		{
			name:     "honors and spaces",
			input:    "11z 7z",
			expected: []Tile{New(Honor, East), New(Honor, East), New(Honor, RedDragon)},
		},
		{name: "missing suit", input: "123", wantErr: true},
		{name: "bad suit", input: "12x", wantErr: true},
		{name: "honor eight", input: "8z", wantErr: true},
		{name: "red honor", input: "0z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEqualRedOnlyForFives(t *testing.T) {
	assert.True(t, Equal(New(Man, 5), New(Man, 5)))
	assert.False(t, Equal(New(Man, 5), NewRed(Man)))
	assert.True(t, SameKind(New(Man, 5), NewRed(Man)))
	assert.False(t, Equal(New(Man, 5), New(Pin, 5)))
}

func TestCompareOrder(t *testing.T) {
	tiles := MustParse("7z0m5m1s9p")
	Sort(tiles)
	assert.Equal(t, "50m9p1s7z", Format(tiles))
	assert.Negative(t, Compare(New(Man, 5), NewRed(Man)))
	assert.Zero(t, Compare(New(Honor, 1), New(Honor, 1)))
}

func TestUniqueKeepsRedSeparate(t *testing.T) {
	got := Unique(MustParse("5505m11z"))
	assert.Equal(t, "50m1z", Format(got))
}

func TestKindRoundTrip(t *testing.T) {
	for k := range Kinds {
		assert.Equal(t, k, FromKind(k).Kind())
	}
	assert.Equal(t, 4, FromKind(4).Kind())
	assert.Equal(t, New(Honor, RedDragon), FromKind(33))
}

func TestDoraFromIndicator(t *testing.T) {
	tests := map[string]string{
		"1m": "2m",
		"9p": "1p",
		"0s": "6s",
		"4z": "1z",
		"1z": "2z",
		"5z": "6z",
		"7z": "5z",
	}
	for ind, want := range tests {
		got := DoraFromIndicator(MustParse(ind)[0])
		assert.Equal(t, want, got.String(), "indicator %s", ind)
	}
}

func TestTileJSON(t *testing.T) {
	in := []Tile{NewRed(Sou), New(Honor, White)}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `["0s","5z"]`, string(b))

	var out []Tile
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestCounts(t *testing.T) {
	c := Counts(MustParse("550m"))
	assert.Equal(t, 3, c[4])
	assert.Equal(t, 3, CountKind(MustParse("550m1z"), New(Man, 5)))
}
