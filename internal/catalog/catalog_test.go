package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpecs() []PlateSpec {
	return []PlateSpec{
		{Label: "45lb", Mass: LbToMass(45), Family: FamilyLb},
		{Label: "20kg", Mass: KgToMass(20), Family: FamilyKg},
		{Label: "10lb", Mass: LbToMass(10), Family: FamilyLb},
		{Label: "5kg", Mass: KgToMass(5), Family: FamilyKg},
		{Label: "5kg-lb", Mass: KgToMass(5), Family: FamilyLb},
	}
}

func TestNew_AppliesDefaultAndOverrides(t *testing.T) {
	c, err := New(testSpecs(), Limits{Default: 2, Overrides: map[string]int{"20kg": 8}})
	require.NoError(t, err)

	i, ok := c.Index("20kg")
	require.True(t, ok)
	assert.Equal(t, 8, c.Cap(i))

	j, _ := c.Index("45lb")
	assert.Equal(t, 2, c.Cap(j))
	assert.Equal(t, Mass(20_411_640), c.Plate(j).Mass)
}

func TestNew_RejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		specs  []PlateSpec
		limits Limits
		want   error
	}{
		{"empty", nil, Limits{Default: 2}, ErrEmptyCatalog},
		{"duplicate", []PlateSpec{
			{Label: "5kg", Mass: KgToMass(5), Family: FamilyKg},
			{Label: "5kg", Mass: KgToMass(5), Family: FamilyKg},
		}, Limits{Default: 2}, ErrDuplicateLabel},
		{"zero weight", []PlateSpec{{Label: "x", Mass: 0, Family: FamilyKg}}, Limits{Default: 2}, ErrNonPositiveWeight},
		{"negative weight", []PlateSpec{{Label: "x", Mass: -1, Family: FamilyKg}}, Limits{Default: 2}, ErrNonPositiveWeight},
		{"bad default cap", testSpecs(), Limits{Default: 0}, ErrInvalidCap},
		{"bad override cap", testSpecs(), Limits{Default: 2, Overrides: map[string]int{"5kg": 0}}, ErrInvalidCap},
		{"unknown override", testSpecs(), Limits{Default: 2, Overrides: map[string]int{"99kg": 1}}, ErrUnknownLabel},
		{"bad family", []PlateSpec{{Label: "x", Mass: 1, Family: "st"}}, Limits{Default: 2}, ErrInvalidFamily},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.specs, tc.limits)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCanonical_HeaviestFirstKgBeforeLb(t *testing.T) {
	c, err := New(testSpecs(), Limits{Default: 4})
	require.NoError(t, err)

	counts := c.NewCounts()
	counts[4] = 1 // 5kg-lb
	counts[2] = 2 // 10lb
	counts[3] = 1 // 5kg
	counts[0] = 1 // 45lb

	seq := c.Canonical(counts)
	assert.Equal(t, []string{"45lb", "5kg", "5kg-lb", "10lb", "10lb"}, c.Labels(seq))
	assert.True(t, c.IsCanonical(seq))
	assert.Equal(t, counts, c.CountsOf(seq))
}

func TestTotal_RoundsToHundredths(t *testing.T) {
	c, err := New(testSpecs(), Limits{Default: 2})
	require.NoError(t, err)

	counts := c.NewCounts()
	counts[2] = 1 // 10lb = 4.53592 kg
	// 20 + 2*4.53592 = 29.07184
	assert.Equal(t, Centikg(2907), c.Total(KgToMass(20), counts))
	assert.InDelta(t, 29.07, c.Total(KgToMass(20), counts).Kg(), 1e-12)
}

func TestMassCentikg_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, Centikg(1), Mass(5_000).Centikg())
	assert.Equal(t, Centikg(0), Mass(4_999).Centikg())
	assert.Equal(t, Centikg(-1), Mass(-5_000).Centikg())
}

func TestWithinCaps(t *testing.T) {
	c, err := New(testSpecs(), Limits{Default: 1, Overrides: map[string]int{"5kg": 3}})
	require.NoError(t, err)

	counts := c.NewCounts()
	counts[3] = 3
	assert.True(t, c.WithinCaps(counts))
	counts[0] = 2
	assert.False(t, c.WithinCaps(counts))
}

func TestSequenceKeyAndLess(t *testing.T) {
	assert.Equal(t, "0,0,3", Sequence{0, 0, 3}.Key())
	assert.Equal(t, "", Sequence{}.Key())
	assert.True(t, Sequence{0, 1}.Less(Sequence{0, 2}))
	assert.True(t, Sequence{0}.Less(Sequence{0, 0}))
	assert.False(t, Sequence{1}.Less(Sequence{0, 5}))
}
