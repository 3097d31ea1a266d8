package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Tomato Early Blight", "early_blight"},
		{"tomato_early_blight", "early_blight"},
		{"early-blight", "early_blight"},
		{"  Tomato-Mosaic-Virus ", "mosaic_virus"},
		{"tomato  healthy", "healthy"},
		{"TOMATO_TOMATO_HEALTHY", "tomato_healthy"}, // only one prefix stripped
		{"", ""},
		{"ripe", "ripe"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Normalize(tc.raw), "raw=%q", tc.raw)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []string{"Tomato Early Blight", "blossom-end-rot", "spider-mites-two-spotted", "healthy leaf"} {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once), "raw=%q", raw)
	}
}

func TestResolve(t *testing.T) {
	for _, raw := range []string{"Tomato Early Blight", "tomato_early_blight", "early-blight"} {
		tag, ok := Resolve(raw)
		assert.True(t, ok, "raw=%q", raw)
		assert.Equal(t, TagEarlyBlight, tag)
	}

	_, ok := Resolve("cucumber_wilt")
	assert.False(t, ok)
}

func TestIsHealthy(t *testing.T) {
	for _, raw := range []string{
		"tomato-healthy", "healthy", "tomato_leaf", "tomato_healthy",
		"tomato healthy", "healthy leaf", "tomato_healthy_leaf",
		"healthy_leaf", "healthy tomato", " Healthy ", "TOMATO-HEALTHY",
	} {
		assert.True(t, IsHealthy(raw), "raw=%q", raw)
	}
	assert.False(t, IsHealthy("early-blight"))
	assert.False(t, IsHealthy("ripe"))
}

func TestIsRipe(t *testing.T) {
	assert.True(t, IsRipe("ripe"))
	assert.True(t, IsRipe(" Ripe "))
	// Unripe is a ripeness class but not ripe; it must not pick up the
	// healthy rendering color.
	assert.False(t, IsRipe("unripe"))
	assert.False(t, IsRipe("tomato-healthy"))
}

func TestClassifyFruit(t *testing.T) {
	assert.Equal(t, KindRipeness, ClassifyFruit("ripe"))
	assert.Equal(t, KindRipeness, ClassifyFruit("Unripe"))
	assert.Equal(t, KindHealthy, ClassifyFruit("tomato-healthy"))
	assert.Equal(t, KindDisease, ClassifyFruit("blossom-end-rot"))
}

func TestClassifyLeaf(t *testing.T) {
	assert.Equal(t, KindHealthy, ClassifyLeaf("healthy leaf"))
	assert.Equal(t, KindDisease, ClassifyLeaf("septoria-leaf-spot"))
	// Ripeness labels never come from the leaf model; they classify as
	// disease rather than getting a special case.
	assert.Equal(t, KindDisease, ClassifyLeaf("ripe"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Blossom End Rot", DisplayName("blossom-end-rot"))
	assert.Equal(t, "Early Blight", DisplayName("early_blight"))
	assert.Equal(t, "Ripe", DisplayName("ripe"))
	assert.Equal(t, "", DisplayName(""))
}
