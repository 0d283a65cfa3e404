// pkg/geo/geo_test.go
package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKM_SamePoint(t *testing.T) {
	d := DistanceKM(43.238949, 76.889709, 43.238949, 76.889709)
	assert.InDelta(t, 0.0, d, 0.001)
}

func TestDistanceKM_KnownDistance(t *testing.T) {
	// Алматы -> Астана, примерно 970 км по прямой
	d := DistanceKM(43.238949, 76.889709, 51.169392, 71.449074)
	assert.InDelta(t, 970.0, d, 15.0)
}

func TestDistanceKM_ShortDistance(t *testing.T) {
	// Две точки в пределах одного города, ~5 км
	d := DistanceKM(43.2220, 76.8512, 43.2567, 76.9286)
	assert.Greater(t, d, 1.0)
	assert.Less(t, d, 15.0)
}

func TestDistanceKM_Symmetric(t *testing.T) {
	d1 := DistanceKM(43.25, 76.95, 42.32, 69.59)
	d2 := DistanceKM(42.32, 69.59, 43.25, 76.95)
	assert.InDelta(t, d1, d2, 0.0001)
}
