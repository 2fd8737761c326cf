package netsession

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxelcore/voxelserver/internal/protocol"
)

func TestDeriveFacingDominantAxis(t *testing.T) {
	cases := []struct {
		rotation protocol.Vec3F
		want     FacingSide
	}{
		{protocol.Vec3F{X: 0.9, Y: 0.1, Z: 0.1}, FacingEast},
		{protocol.Vec3F{X: -0.9, Y: 0.1, Z: 0.1}, FacingWest},
		{protocol.Vec3F{X: 0.1, Y: 0.9, Z: 0.1}, FacingTop},
		{protocol.Vec3F{X: 0.1, Y: -0.9, Z: 0.1}, FacingBottom},
		{protocol.Vec3F{X: 0.1, Y: 0.1, Z: 0.9}, FacingSouth},
		{protocol.Vec3F{X: 0.1, Y: 0.1, Z: -0.9}, FacingNorth},
	}

	for _, c := range cases {
		require.Equal(t, c.want, deriveFacing(c.rotation), "rotation %+v", c.rotation)
	}
}

func TestNormalizeRotationLeavesZeroVectorAlone(t *testing.T) {
	require.Equal(t, protocol.Vec3F{}, normalizeRotation(protocol.Vec3F{}))
}

func TestNormalizeRotationProducesUnitLength(t *testing.T) {
	n := normalizeRotation(protocol.Vec3F{X: 3, Y: 0, Z: 4})
	require.InDelta(t, 0.6, n.X, 1e-9)
	require.InDelta(t, 0, n.Y, 1e-9)
	require.InDelta(t, 0.8, n.Z, 1e-9)
}
