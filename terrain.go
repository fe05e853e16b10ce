package prj

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// maxSampleHeight is the largest height an offset table sample can add.
const maxSampleHeight = float32(255) / sampleScale

// Blocks returns the macroblocks of heightmap 1 or 2.
func (t *Terrain) Blocks(heightmap int) ([]TerrainBlock, error) {
	switch heightmap {
	case Heightmap1:
		return t.Heightmap1Blocks, nil
	case Heightmap2:
		return t.Heightmap2Blocks, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidHeightmap, heightmap)
	}
}

// TilesPerRow is the number of macroblocks in one row of a heightmap.
func (t *Terrain) TilesPerRow() int {
	return (int(t.Width) + TileSize - 1) / TileSize
}

// tileIndex is the row-major macroblock address of pixel (px, py).
func (t *Terrain) tileIndex(px, py int) int {
	return (py/TileSize)*t.TilesPerRow() + px/TileSize
}

// sample returns the offset table sample of pixel (px, py) inside block b.
func (t *Terrain) sample(b TerrainBlock, px, py int) (uint8, error) {
	if uint64(b.OffsetIndex) >= uint64(len(t.HeightOffsets)) {
		return 0, fmt.Errorf("%w: index %d, pool has %d tables", ErrInvalidHeightOffsetsIndex, b.OffsetIndex, len(t.HeightOffsets))
	}

	return t.HeightOffsets[b.OffsetIndex][px%TileSize+(py%TileSize)*TileSize], nil
}

// Height returns the terrain height at world position (x, y) of heightmap 1
// or 2. One heightmap pixel spans 8 world units. Positions outside the map
// are clamped to its edge, and the computed block address is clamped to the
// block list, so a query never fails for being out of range.
func (t *Terrain) Height(heightmap int, x, y int32) (float32, error) {
	blocks, err := t.Blocks(heightmap)
	if err != nil {
		return 0, err
	}
	if len(blocks) == 0 {
		return 0, ErrEmptyTerrain
	}

	px := clamp(int(x/TileSize), 0, max(int(t.Width)-1, 0))
	py := clamp(int(y/TileSize), 0, max(int(t.Height)-1, 0))

	// May hide a genuinely out-of-range query.
	b := blocks[clamp(t.tileIndex(px, py), 0, len(blocks)-1)]

	s, err := t.sample(b, px, py)
	if err != nil {
		return 0, err
	}

	return heightFromTerrainPair(b.BaseHeight, s), nil
}

// heightRange returns the lowest base height and the highest reachable
// height of a heightmap.
func heightRange(blocks []TerrainBlock) (lo, hi float32) {
	lo, hi = math32.MaxFloat32, -math32.MaxFloat32
	for _, b := range blocks {
		base := float32(b.BaseHeight) / baseHeightScale
		lo = math32.Min(lo, base)
		hi = math32.Max(hi, base+maxSampleHeight)
	}

	return lo, hi
}

// HeightmapImage renders heightmap 1 or 2 as a Width x Height grayscale
// image. Higher terrain is darker and the image is mirrored horizontally to
// match the row order of the game files.
func (t *Terrain) HeightmapImage(heightmap int) (*image.Gray, error) {
	blocks, err := t.Blocks(heightmap)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, ErrEmptyTerrain
	}

	w, h := int(t.Width), int(t.Height)
	img := image.NewGray(image.Rect(0, 0, w, h))
	lo, hi := heightRange(blocks)
	span := hi - lo

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := t.tileIndex(x, y)
			if i >= len(blocks) {
				continue
			}
			s, err := t.sample(blocks[i], x, y)
			if err != nil {
				return nil, err
			}

			v := (heightFromTerrainPair(blocks[i].BaseHeight, s) - lo) / span
			v = math32.Max(0, math32.Min(1, v))
			img.Pix[y*img.Stride+(w-1-x)] = 255 - uint8(math32.Round(v*255))
		}
	}

	return img, nil
}
