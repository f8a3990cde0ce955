package world

import "github.com/annel0/mmo-game/internal/vec"

// regionSize is the width/depth of a streaming region in chunks,
// carried over from the teacher's 32x32 BigChunk grouping. Regions are
// purely a batching unit here (Level.Save flushes chunks grouped by
// region) — the spec pins per-chunk save files, so a region is no
// longer a persistence unit the way BigChunk was.
const regionSize = 32

// regionPos buckets a chunk position into its containing region.
func regionPos(c vec.ChunkPos) vec.ChunkPos {
	return vec.ChunkPos{X: vec.FloorDiv(c.X, regionSize), Z: vec.FloorDiv(c.Z, regionSize)}
}

// groupByRegion partitions a set of chunk positions by their region,
// so Level.Save can walk its work region-by-region.
func groupByRegion(coords []vec.ChunkPos) map[vec.ChunkPos][]vec.ChunkPos {
	groups := make(map[vec.ChunkPos][]vec.ChunkPos)
	for _, c := range coords {
		r := regionPos(c)
		groups[r] = append(groups[r], c)
	}
	return groups
}
