package catalogs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FaceCount and the face id order used everywhere geometry or textures
// are indexed per face: +x, -x, +y (top), -y (bottom), +z, -z.
const FaceCount = 6

type Catalogs struct {
	Blocks BlockCatalog
}

// BlockCatalog is the block-type table: solidity and texture-array
// layers per face, keyed by block id. Id 0 is air and is answered
// without consulting the table.
type BlockCatalog struct {
	Defs       map[uint16]BlockDef
	IDs        []uint16 // sorted, for deterministic iteration
	DefsDigest string
}

type BlockDef struct {
	ID    uint16 `json:"id"`
	Name  string `json:"name"`
	Solid bool   `json:"solid"`

	// Texture-array layer per face, in face id order. A single-element
	// slice applies to all six faces.
	Faces []int `json:"faces"`
}

// Solid reports whether a block id occludes adjacent faces. Air and
// unknown ids never do.
func (c *BlockCatalog) Solid(id uint16) bool {
	if id == 0 {
		return false
	}
	d, ok := c.Defs[id]
	return ok && d.Solid
}

// IDByName resolves a block id from its catalog name.
func (c *BlockCatalog) IDByName(name string) (uint16, bool) {
	for _, id := range c.IDs {
		if c.Defs[id].Name == name {
			return id, true
		}
	}
	return 0, false
}

// FaceLayer returns the texture-array layer for one face of a block.
func (c *BlockCatalog) FaceLayer(id uint16, face int) int {
	d, ok := c.Defs[id]
	if !ok || len(d.Faces) == 0 {
		return 0
	}
	if len(d.Faces) == 1 {
		return d.Faces[0]
	}
	return d.Faces[face]
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadBlocks(
		filepath.Join(configDir, "blocks.json"),
		filepath.Join(configDir, "schemas", "blocks.schema.json"),
		&c.Blocks,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(path, schemaPath string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	schema, err := jsonschema.Compile(schemaPath)
	if err != nil {
		return fmt.Errorf("blocks schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}

	var defs []BlockDef
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}

	out.Defs = map[uint16]BlockDef{}
	for _, d := range defs {
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("blocks.json: duplicate id %d", d.ID)
		}
		if len(d.Faces) != 1 && len(d.Faces) != FaceCount {
			return fmt.Errorf("blocks.json: %s: faces must have 1 or %d entries", d.Name, FaceCount)
		}
		out.Defs[d.ID] = d
	}

	// Id 0 is reserved for air: it must exist and must not be solid, so
	// the flat block arrays zero-value to empty space.
	air, ok := out.Defs[0]
	if !ok {
		return fmt.Errorf("blocks.json: missing air (id 0)")
	}
	if air.Solid {
		return fmt.Errorf("blocks.json: air (id 0) must not be solid")
	}

	out.IDs = make([]uint16, 0, len(out.Defs))
	for id := range out.Defs {
		out.IDs = append(out.IDs, id)
	}
	sort.Slice(out.IDs, func(i, j int) bool { return out.IDs[i] < out.IDs[j] })
	return nil
}
