package mesh

// Face ids follow the catalog convention: +x, -x, +y, -y, +z, -z.

var faceDirs = [6][3]int{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
}

// Unit-cube corner offsets per face, counter-clockwise as seen from
// outside the cube, so back-face culling with CCW front faces works.
var faceVerts = [6][4][3]float32{
	{{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}}, // +x
	{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}, // -x
	{{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}}, // +y
	{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}, // -y
	{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}, // +z
	{{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}}, // -z
}

// UV corners in the same winding as faceVerts.
var faceUVs = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Per-face shading constants stand in for normals: the face id fully
// determines the normal, and the shader only needs the brightness.
var faceShade = [6]float32{0.8, 0.8, 1.0, 0.49, 0.6, 0.6}

// Two CCW triangles per quad.
var faceIndices = [6]uint32{0, 1, 2, 0, 2, 3}
