package world

import (
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
	"github.com/aquilax/go-perlin"
)

// Generation parameters, per the terrain generator contract: 5 octaves,
// base frequency 0.005, heights clamped to [32, 128].
const (
	noiseOctaves  = 5
	noiseBaseFreq = 0.005
	terrainMinY   = 32
	terrainMaxY   = 128
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	bedrockY      = 0
)

// Generator produces deterministic column-wise terrain from seeded fBm
// Perlin noise, following the teacher's util.PerlinNoise2D wrapper
// around aquilax/go-perlin, generalized from a flat 2D height-map into
// full chunk columns.
type Generator struct {
	seed  int64
	noise *perlin.Perlin
}

// NewGenerator creates a terrain generator seeded from WorldMeta.seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:  seed,
		noise: perlin.NewPerlin(perlinAlpha, perlinBeta, noiseOctaves, seed),
	}
}

// heightAt returns the fBm-derived surface height for a world column,
// clamped to [terrainMinY, terrainMaxY].
func (g *Generator) heightAt(worldX, worldZ int) int {
	nx := float64(worldX) * noiseBaseFreq
	nz := float64(worldZ) * noiseBaseFreq

	// Normalize the Perlin output (-1..1) to 0..1 before scaling into
	// the height band, matching the teacher's PerlinNoise2D convention.
	n := (g.noise.Noise2D(nx, nz) + 1.0) / 2.0

	height := terrainMinY + int(n*float64(terrainMaxY-terrainMinY))
	if height < terrainMinY {
		height = terrainMinY
	}
	if height > terrainMaxY {
		height = terrainMaxY
	}
	return height
}

// GenerateChunkData fills chunk with procedural terrain: surface block
// is Dirt, below is Stone, y==0 is Bedrock, above the surface is Air.
func (g *Generator) GenerateChunkData(chunk *Chunk) {
	baseX := chunk.Coords.X * vec.ChunkSize
	baseZ := chunk.Coords.Z * vec.ChunkSize

	for lx := 0; lx < vec.ChunkSize; lx++ {
		for lz := 0; lz < vec.ChunkSize; lz++ {
			worldX := baseX + lx
			worldZ := baseZ + lz
			surface := g.heightAt(worldX, worldZ)

			for y := 0; y < vec.ChunkHeight; y++ {
				var state block.BlockState
				switch {
				case y == bedrockY:
					state = block.NewBlockState(block.BedrockBlockId, block.North)
				case y < surface:
					state = block.NewBlockState(block.StoneBlockId, block.North)
				case y == surface:
					state = block.NewBlockState(block.DirtBlockId, block.North)
				default:
					state = block.Air
				}
				if state != block.Air {
					chunk.SetBlock(vec.LocalBlockPos{X: lx, Y: y, Z: lz}, state)
				}
			}
		}
	}

	// Generation itself is not a "change" in the mining/editing sense;
	// clear the Save bit it picked up from SetBlock so a freshly
	// generated, never-edited chunk isn't written back verbatim.
	chunk.ClearDirty(DirtySave)
}
