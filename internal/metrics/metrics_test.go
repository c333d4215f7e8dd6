package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/kingrea/companions/internal/marker"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.CompanionRegistered("ModA", marker.KindBanner)
	r.CompanionRegistered("ModA", marker.KindBanner)
	r.CompanionRegistered("ModA", marker.KindCritter)
	r.ResolutionFailed("ModA", marker.KindCritter)
	r.NameCollision("ModA")
	r.DiscoveryPass("ModA")
	r.FinalizeObserved()
	r.Augmented(marker.KindBanner)
	r.AugmentFailed()
	r.InterceptionInstalled()
	r.InterceptionRefs(3)
	r.HelperRefs(2)
	r.Tenants(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.companions.WithLabelValues("ModA", "banner")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.companions.WithLabelValues("ModA", "critter")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.resolveErrors.WithLabelValues("ModA", "critter")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.collisions.WithLabelValues("ModA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.finalized))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.augmentErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.installations))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.interceptRefs))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.helperRefs))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.tenants))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.CompanionRegistered("ModA", marker.KindBanner)
		r.ResolutionFailed("ModA", marker.KindBanner)
		r.NameCollision("ModA")
		r.DiscoveryPass("ModA")
		r.FinalizeObserved()
		r.Augmented(marker.KindCritter)
		r.AugmentFailed()
		r.InterceptionInstalled()
		r.InterceptionRefs(1)
		r.HelperRefs(1)
		r.Tenants(1)
	})
}
