package prj

import (
	"fmt"

	"github.com/woozymasta/bcn"
)

// Signature is the format ID at the start of every project file.
// Trailing spaces intended.
const Signature = "Dark Omen Battle file 1.10      "

// Block tags in container order.
const (
	TagBase       = "BASE"
	TagWater      = "WATR"
	TagFurniture  = "FURN"
	TagInstances  = "INST"
	TagTerrain    = "TERR"
	TagAttributes = "ATTR"
	TagExcl       = "EXCL"
	TagMusic      = "MUSC"
	TagTracks     = "TRAC"
	TagEdit       = "EDIT"
)

const (
	signatureSize = 32
	tagSize       = 4

	// InstanceSize is the size of one INST record.
	InstanceSize = 152
	// terrainBlockSize is one heightmap entry: i32 base height + u32 offset.
	terrainBlockSize = 8
	// HeightOffsetsSize is the size of one offset table (8x8 samples).
	HeightOffsetsSize = 64
	// TileSize is the width and height of a terrain macroblock in pixels.
	TileSize = 8
	// MusicFieldSize is the fixed size of the MUSC payload.
	MusicFieldSize = 20

	// terrainHeaderFields is width, height, offsets count, block count and
	// combined heightmaps size.
	terrainHeaderFields = 5 * 4
	// attributesSizeAdjust is how many bytes ATTR under-reports.
	attributesSizeAdjust = 64

	// readChunkSize caps the up-front buffer of a sized payload read.
	readChunkSize = 64 * 1024
)

// furnitureDataSize converts the declared FURN size to the payload size that
// follows the count field. The declared value is short by 4 bytes per entry
// (the length prefixes) and covers the count field itself.
func furnitureDataSize(declared, count uint32) (int, error) {
	n := int64(declared) + 4*int64(count) - 4
	if n < 0 || n > int64(maxInt32) {
		return 0, fmt.Errorf("%w: furniture size %d for %d entries", ErrInvalid, declared, count)
	}

	return int(n), nil
}

// furnitureDeclaredSize is the inverse of furnitureDataSize.
func furnitureDeclaredSize(dataSize, count int) (uint32, error) {
	return u32FromInt(dataSize - 4*count + 4)
}

// attributesDataSize converts the declared ATTR size to the real payload size.
func attributesDataSize(declared uint32) int {
	return int(declared) + attributesSizeAdjust
}

// attributesDeclaredSize is the inverse of attributesDataSize.
func attributesDeclaredSize(dataSize int) (uint32, error) {
	if dataSize < attributesSizeAdjust {
		return 0, fmt.Errorf("%w: attributes payload %d bytes, need at least %d", ErrInvalid, dataSize, attributesSizeAdjust)
	}

	return u32FromInt(dataSize - attributesSizeAdjust)
}

// heightmapBlocksSize validates the combined size of both heightmaps against
// the block count and returns the size of one heightmap.
func heightmapBlocksSize(combined, blockCount uint32) (int, error) {
	if uint64(combined) != 2*terrainBlockSize*uint64(blockCount) {
		return 0, fmt.Errorf("%w: heightmaps size %d does not match %d blocks", ErrInvalid, combined, blockCount)
	}

	return int(combined / 2), nil
}

// terrainDeclaredSize is the TERR size as the game writes it. It covers only
// one of the two heightmaps.
func terrainDeclaredSize(blockCount, offsetsCount int) (uint32, error) {
	return u32FromInt(terrainHeaderFields + blockCount*terrainBlockSize + 4 + offsetsCount*HeightOffsetsSize)
}

func makeFourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

func expectedDataLength(format bcn.Format, width, height int) int {
	blocksW := (width + 3) / 4
	blocksH := (height + 3) / 4
	switch format {
	case bcn.FormatBC4:
		return blocksW * blocksH * 8
	case bcn.FormatRGBA8:
		return width * height * 4
	default:
		return -1
	}
}

// makeDDSHeader builds a DDS header for an exported heightmap texture.
func makeDDSHeader(width, height uint32, format bcn.Format) (*bcn.DDSHeader, error) {
	hdr := &bcn.DDSHeader{
		Size:        bcn.DDSHeaderSize,
		Flags:       uint32(bcn.DDSFlagCaps | bcn.DDSFlagHeight | bcn.DDSFlagWidth | bcn.DDSFlagPixelFormat),
		Height:      height,
		Width:       width,
		Depth:       1,
		MipMapCount: 1,
		Caps:        uint32(bcn.DDSCapsTexture),
	}
	hdr.PixelFormat.Size = bcn.DDSPixelFormatSize

	switch format {
	case bcn.FormatBC4:
		hdr.Flags |= bcn.DDSFlagLinearSize
		hdr.PixelFormat.Flags = bcn.DDSPFFourCC
		hdr.PixelFormat.FourCC = makeFourCC('A', 'T', 'I', '1')
		hdr.PitchOrLinearSize = uint32(expectedDataLength(format, int(width), int(height)))
	case bcn.FormatRGBA8:
		hdr.Flags |= bcn.DDSFlagPitch
		hdr.PixelFormat.Flags = bcn.DDSPFRGB | bcn.DDSPFAlphaPixels
		hdr.PixelFormat.RGBBitCount = 32
		hdr.PixelFormat.RBitMask = 0x000000ff
		hdr.PixelFormat.GBitMask = 0x0000ff00
		hdr.PixelFormat.BBitMask = 0x00ff0000
		hdr.PixelFormat.ABitMask = 0xff000000
		hdr.PitchOrLinearSize = width * 4
	default:
		return nil, fmt.Errorf("%w: texture format %v", ErrInvalid, format)
	}

	return hdr, nil
}
