// Package mesher builds per-section render geometry for a chunk: a
// culled-face mesh where only faces bordering a non-solid neighbor
// are emitted, with orientation-aware atlas UVs.
package mesher

import (
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world"
	"github.com/annel0/mmo-game/internal/world/block"
)

// Vertex is one mesh vertex: position and normal in section-local
// space, UV plus the atlas array-texture layer, and a tint multiplier.
type Vertex struct {
	Position vec.Vec3Float
	Normal   vec.Vec3Float
	U, V     float32
	Layer    int
	Tint     [3]float32
}

// Mesh is the output of meshing a single section: a flat vertex
// buffer and a triangle index buffer referencing it.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Face identifies one of the six cardinal voxel faces.
type Face int

const (
	FaceNorth Face = iota // -Z
	FaceSouth              // +Z
	FaceEast               // +X
	FaceWest               // -X
	FaceUp                 // +Y
	FaceDown               // -Y
)

type faceDef struct {
	face       Face
	dx, dy, dz int
	normal     vec.Vec3Float
}

var faceDefs = [6]faceDef{
	{FaceNorth, 0, 0, -1, vec.Vec3Float{Z: -1}},
	{FaceSouth, 0, 0, 1, vec.Vec3Float{Z: 1}},
	{FaceEast, 1, 0, 0, vec.Vec3Float{X: 1}},
	{FaceWest, -1, 0, 0, vec.Vec3Float{X: -1}},
	{FaceUp, 0, 1, 0, vec.Vec3Float{Y: 1}},
	{FaceDown, 0, -1, 0, vec.Vec3Float{Y: -1}},
}

// faceCorners gives the four [0,1]^3 offsets for each face, wound so
// that (0,1,2),(0,2,3) produces an outward-facing triangle pair.
var faceCorners = map[Face][4][3]float32{
	FaceNorth: {{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
	FaceSouth: {{1, 0, 1}, {1, 1, 1}, {0, 1, 1}, {0, 0, 1}},
	FaceEast:  {{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
	FaceWest:  {{0, 0, 1}, {0, 1, 1}, {0, 1, 0}, {0, 0, 0}},
	FaceUp:    {{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}},
	FaceDown:  {{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {1, 0, 1}},
}

// Region is an atlas lookup result: the array-texture layer and the
// four UV coordinates to assign to a face's four corners, already in
// winding order.
type Region struct {
	Layer int
	UV    [4][2]float32
}

// Atlas is the texture-atlas collaborator: given a block state and
// the face being drawn, it returns which array layer and UV rect to
// sample, already rotated for the block's orientation.
type Atlas interface {
	GetRegion(state block.BlockState, face Face) Region
}

// sectionBlockSource supplies a solid/air lookup across chunk section
// boundaries, delegating to Level.GetBlock for cross-chunk queries.
type sectionBlockSource struct {
	chunk   *world.Chunk
	level   *world.Level
	section int
}

func (s sectionBlockSource) get(localX, localY, localZ int) block.BlockState {
	if localX >= 0 && localX < vec.ChunkSize &&
		localZ >= 0 && localZ < vec.ChunkSize &&
		localY >= 0 && localY < vec.ChunkSize {
		return s.chunk.GetBlock(vec.LocalBlockPos{X: localX, Y: s.section*vec.ChunkSize + localY, Z: localZ})
	}
	worldPos := vec.LocalBlockPos{X: localX, Y: s.section*vec.ChunkSize + localY, Z: localZ}.World(s.chunk.Coords)
	return s.level.GetBlock(worldPos)
}

// BuiltMesh pairs a section's output mesh with the chunk meshRevision
// it was built from, so callers can apply the rebuild policy in 4.8.
type BuiltMesh struct {
	Mesh           Mesh
	BuiltRevision  uint64
}

// NeedsRebuild implements the rebuild policy from spec.md: a section
// is remeshed iff the cached revision is stale or the chunk's Mesh
// dirty bit is still set.
func NeedsRebuild(c *world.Chunk, builtRevision uint64) bool {
	return builtRevision != c.MeshRevision() || c.Dirty(world.DirtyMesh)
}

// BuildSection meshes one 16^3 section of a chunk, culling faces
// against solid neighbors (same-chunk or across a chunk boundary via
// level.GetBlock) and sampling UVs from atlas.
func BuildSection(level *world.Level, c *world.Chunk, section int, atlas Atlas) Mesh {
	src := sectionBlockSource{chunk: c, level: level, section: section}
	var mesh Mesh

	for y := 0; y < vec.ChunkSize; y++ {
		for z := 0; z < vec.ChunkSize; z++ {
			for x := 0; x < vec.ChunkSize; x++ {
				state := src.get(x, y, z)
				if state.IsAir() {
					continue
				}
				for _, fd := range faceDefs {
					neighbor := src.get(x+fd.dx, y+fd.dy, z+fd.dz)
					if !neighbor.IsAir() {
						continue
					}
					emitQuad(&mesh, atlas, state, fd, x, y, z)
				}
			}
		}
	}
	return mesh
}

func emitQuad(mesh *Mesh, atlas Atlas, state block.BlockState, fd faceDef, x, y, z int) {
	region := atlas.GetRegion(state, fd.face)
	corners := faceCorners[fd.face]
	base := uint32(len(mesh.Vertices))

	for i, corner := range corners {
		mesh.Vertices = append(mesh.Vertices, Vertex{
			Position: vec.Vec3Float{
				X: float64(x) + float64(corner[0]),
				Y: float64(y) + float64(corner[1]),
				Z: float64(z) + float64(corner[2]),
			},
			Normal: fd.normal,
			U:      region.UV[i][0],
			V:      region.UV[i][1],
			Layer:  region.Layer,
			Tint:   [3]float32{1, 1, 1},
		})
	}
	mesh.Indices = append(mesh.Indices,
		base+0, base+1, base+2,
		base+0, base+2, base+3,
	)
}
