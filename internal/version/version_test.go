package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "1.2.3", want: "1.2.3"},
		{name: "v prefix", input: "v0.8.2", want: "0.8.2"},
		{name: "prerelease", input: "1.0.0-rc.1", want: "1.0.0-rc.1"},
		{name: "surrounding whitespace", input: " 1.2.3 ", want: "1.2.3"},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "not-a-version", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"2.0.0", "1.9.9", 1},
		{"1.1.0", "1.0.9", 1},
		{"1.0.1", "1.0.0", 1},
		{"0.9.0", "1.0.0", -1},
		{"1.0.0-rc.1", "1.0.0", -1},
	}

	for _, tt := range tests {
		a := MustParse(tt.a)
		b := MustParse(tt.b)
		assert.Equal(t, tt.want, a.Compare(b), "%s vs %s", tt.a, tt.b)
		assert.Equal(t, -tt.want, b.Compare(a), "%s vs %s reversed", tt.b, tt.a)
	}
}

func TestCompareTransitive(t *testing.T) {
	a := MustParse("1.0.0")
	b := MustParse("1.5.0")
	c := MustParse("2.0.0")

	assert.True(t, a.LessThan(b))
	assert.True(t, b.LessThan(c))
	assert.True(t, a.LessThan(c))
	assert.True(t, a.Equal(a))
}

func TestSatisfies(t *testing.T) {
	v := MustParse("1.5.0")
	min := MustParse("1.5.0")
	lower := MustParse("1.4.9")
	higher := MustParse("1.6.0")

	assert.True(t, v.Satisfies(nil), "nil minimum means no constraint")
	assert.True(t, v.Satisfies(&min))
	assert.True(t, v.Satisfies(&lower))
	assert.False(t, v.Satisfies(&higher))
}

func TestTextRoundTrip(t *testing.T) {
	v := MustParse("1.2.3")
	b, err := v.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", string(b))

	var out Version
	require.NoError(t, out.UnmarshalText(b))
	assert.True(t, v.Equal(out))

	var bad Version
	require.Error(t, bad.UnmarshalText([]byte("nope")))
}

func TestIsZero(t *testing.T) {
	var zero Version
	assert.True(t, zero.IsZero())
	assert.Equal(t, "", zero.String())
	assert.False(t, MustParse("0.0.1").IsZero())
}
