package model

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// VertexStride is the size of a marshaled Vertex in bytes.
const VertexStride = 32

// Vertex is the interleaved representation of one de-indexed mesh vertex.
// Size: 32 bytes (no padding).
type Vertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal (12 bytes)
	TexCoord [2]float32 // offset 24: st texture coordinate (8 bytes)
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// Marshal serializes the Vertex into a little-endian byte buffer.
//
// Returns:
//   - []byte: 32-byte buffer.
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexStride)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(v.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(v.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(v.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(v.TexCoord[1]))
	return buf
}

// Vertices interleaves the primitive's separate buffers into Vertex values.
// Missing normals or texture coordinates are left zeroed.
//
// Returns:
//   - []Vertex: one entry per de-indexed vertex
func (p *Primitive) Vertices() []Vertex {
	n := p.VertexCount()
	out := make([]Vertex, n)
	hasNormals := len(p.Normals) >= n*3
	hasUVs := len(p.TexCoords) >= n*2
	for i := 0; i < n; i++ {
		v := &out[i]
		copy(v.Position[:], p.Positions[i*3:i*3+3])
		if hasNormals {
			copy(v.Normal[:], p.Normals[i*3:i*3+3])
		}
		if hasUVs {
			copy(v.TexCoord[:], p.TexCoords[i*2:i*2+2])
		}
	}
	return out
}

// ComputeBounds updates the mesh bounding box from the positions of all primitives.
// A mesh without positions keeps a zero box.
func (m *Mesh) ComputeBounds() {
	first := true
	for _, prim := range m.Primitives {
		for i := 0; i+2 < len(prim.Positions); i += 3 {
			for k := 0; k < 3; k++ {
				c := prim.Positions[i+k]
				if first || c < m.BoundingMin[k] {
					m.BoundingMin[k] = c
				}
				if first || c > m.BoundingMax[k] {
					m.BoundingMax[k] = c
				}
			}
			first = false
		}
	}
}
