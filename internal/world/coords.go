package world

// ChunkCoordsOf reduces a world-space position to the (cx,cy,cz) indices of
// the chunk that contains it.
func ChunkCoordsOf(pos Vec3) (cx, cy, cz int) {
	return FloorDiv(pos.X, Size), FloorDiv(pos.Y, Height), FloorDiv(pos.Z, Size)
}

// ChunkOriginOf returns the world-space origin of the chunk containing pos.
func ChunkOriginOf(pos Vec3) Vec3 {
	cx, cy, cz := ChunkCoordsOf(pos)
	return WorldOrigin(cx, cy, cz)
}

// LocalOf reduces a world-space position to its local offset within its
// chunk, correctly wrapping negative coordinates.
func LocalOf(pos Vec3) Vec3 {
	return Vec3{
		X: FloorMod(pos.X, Size),
		Y: FloorMod(pos.Y, Height),
		Z: FloorMod(pos.Z, Size),
	}
}
