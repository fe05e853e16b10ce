package prj

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// instanceRecord is the on-disk INST record.
type instanceRecord struct {
	Prev                     int32
	Next                     int32
	Selected                 int32
	ExcludeFromTerrain       int32
	Position                 [3]uint32
	Rotation                 [3]uint32
	AABBMin                  [3]int32
	AABBMax                  [3]int32
	FurnitureModelSlot       uint32
	ModelID                  int32
	Attackable               int32
	Toughness                int32
	Wounds                   int32
	Unknown1                 int32
	OwnerUnitIndex           int32
	Burnable                 int32
	SFXCode                  uint32
	GFXCode                  uint32
	Locked                   int32
	ExcludeFromTerrainShadow int32
	ExcludeFromWalk          int32
	MagicItemCode            uint32
	ParticleEffectCode       uint32
	FurnitureDeadModelSlot   uint32
	DeadModelID              int32
	Light                    int32
	LightRadius              int32
	LightAmbient             int32
	Unknown2                 int32
	Unknown3                 int32
}

// terrainBlockRecord is the on-disk heightmap entry.
type terrainBlockRecord struct {
	BaseHeight int32
	Offset     uint32
}

// Read reads and decodes a project file.
func Read(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Decode decodes a whole project from r. Nothing is returned unless every
// block decodes.
func Decode(r io.Reader) (*Project, error) {
	s := newBlockScanner(r)
	if err := s.readSignature(); err != nil {
		return nil, err
	}

	var (
		p   Project
		err error
	)

	if p.BaseModelFileName, err = readBase(s); err != nil {
		return nil, err
	}
	if p.WaterModelFileName, err = readWater(s); err != nil {
		return nil, err
	}
	if p.FurnitureModelFileNames, err = readFurniture(s); err != nil {
		return nil, err
	}
	if p.Instances, err = readInstances(s); err != nil {
		return nil, err
	}
	if p.Terrain, err = readTerrain(s); err != nil {
		return nil, err
	}
	if p.Attributes, err = readAttributes(s); err != nil {
		return nil, err
	}
	if p.Excl, err = readExcl(s); err != nil {
		return nil, err
	}
	if p.BackgroundMusicScriptFileName, p.BackgroundMusicScriptPadding, err = readMusic(s); err != nil {
		return nil, err
	}
	if p.Tracks, err = readTracks(s); err != nil {
		return nil, err
	}
	if p.Edit, err = s.readToEnd(TagEdit); err != nil {
		return nil, err
	}

	return &p, nil
}

func readBase(s *blockScanner) (string, error) {
	data, err := s.readBlock(TagBase)
	if err != nil {
		return "", err
	}

	name, err := decodeCString(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", TagBase, err)
	}

	return name, nil
}

// readWater decodes WATR. A payload of a single NUL means no water model.
func readWater(s *blockScanner) (string, error) {
	data, err := s.readBlock(TagWater)
	if err != nil {
		return "", err
	}

	name, err := decodeCString(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", TagWater, err)
	}

	return name, nil
}

func readFurniture(s *blockScanner) ([]string, error) {
	declared, err := s.readBlockHeader(TagFurniture)
	if err != nil {
		return nil, err
	}
	count, err := s.readU32(TagFurniture)
	if err != nil {
		return nil, err
	}

	size, err := furnitureDataSize(declared, count)
	if err != nil {
		return nil, err
	}
	data, err := s.readBytes(TagFurniture, size)
	if err != nil {
		return nil, err
	}

	return decodeFurniture(data, count)
}

// decodeFurniture parses count length-prefixed C-strings.
func decodeFurniture(data []byte, count uint32) ([]string, error) {
	names := make([]string, 0, min(int(count), len(data)/4))
	pos := 0
	for i := uint32(0); i < count; i++ {
		if len(data)-pos < 4 {
			return nil, fmt.Errorf("%w: %s: entry %d truncated", ErrInvalid, TagFurniture, i)
		}
		n := int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
		if n > len(data)-pos {
			return nil, fmt.Errorf("%w: %s: entry %d length %d overruns block", ErrInvalid, TagFurniture, i, n)
		}

		name, err := decodeCString(data[pos : pos+n])
		if err != nil {
			return nil, fmt.Errorf("%s: entry %d: %w", TagFurniture, i, err)
		}
		names = append(names, name)
		pos += n
	}
	if pos != len(data) {
		return nil, fmt.Errorf("%w: %s: %d bytes left after %d entries", ErrInvalid, TagFurniture, len(data)-pos, count)
	}

	return names, nil
}

func readInstances(s *blockScanner) ([]Instance, error) {
	size, err := s.readBlockHeader(TagInstances)
	if err != nil {
		return nil, err
	}
	count, err := s.readU32(TagInstances)
	if err != nil {
		return nil, err
	}
	recordSize, err := s.readU32(TagInstances)
	if err != nil {
		return nil, err
	}

	if recordSize != InstanceSize {
		return nil, fmt.Errorf("%w: %s: record size %d, expected %d", ErrInvalid, TagInstances, recordSize, InstanceSize)
	}
	if uint64(size) != uint64(count)*InstanceSize {
		return nil, fmt.Errorf("%w: %s: size %d does not hold %d records", ErrInvalid, TagInstances, size, count)
	}

	data, err := s.readBytes(TagInstances, int(size))
	if err != nil {
		return nil, err
	}

	return decodeInstances(data, int(count))
}

func decodeInstances(data []byte, count int) ([]Instance, error) {
	records := make([]instanceRecord, count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadBlock, TagInstances, err)
	}

	instances := make([]Instance, count)
	for i := range records {
		instances[i] = instanceFromRecord(&records[i])
	}

	return instances, nil
}

func instanceFromRecord(r *instanceRecord) Instance {
	return Instance{
		Prev:                     r.Prev,
		Next:                     r.Next,
		Selected:                 r.Selected,
		ExcludeFromTerrain:       r.ExcludeFromTerrain,
		Position:                 Vec3{positionFromU32(r.Position[0]), positionFromU32(r.Position[1]), positionFromU32(r.Position[2])},
		Rotation:                 Vec3{rotationFromU32(r.Rotation[0]), rotationFromU32(r.Rotation[1]), rotationFromU32(r.Rotation[2])},
		AABBMin:                  vec3FromI32(r.AABBMin),
		AABBMax:                  vec3FromI32(r.AABBMax),
		FurnitureModelSlot:       r.FurnitureModelSlot,
		ModelID:                  r.ModelID,
		Attackable:               r.Attackable,
		Toughness:                r.Toughness,
		Wounds:                   r.Wounds,
		Unknown1:                 r.Unknown1,
		OwnerUnitIndex:           r.OwnerUnitIndex,
		Burnable:                 r.Burnable,
		SFXCode:                  r.SFXCode,
		GFXCode:                  r.GFXCode,
		Locked:                   r.Locked,
		ExcludeFromTerrainShadow: r.ExcludeFromTerrainShadow,
		ExcludeFromWalk:          r.ExcludeFromWalk,
		MagicItemCode:            r.MagicItemCode,
		ParticleEffectCode:       r.ParticleEffectCode,
		FurnitureDeadModelSlot:   r.FurnitureDeadModelSlot,
		DeadModelID:              r.DeadModelID,
		Light:                    r.Light,
		LightRadius:              r.LightRadius,
		LightAmbient:             r.LightAmbient,
		Unknown2:                 r.Unknown2,
		Unknown3:                 r.Unknown3,
	}
}

func vec3FromI32(v [3]int32) Vec3 {
	return Vec3{coordFromI32(v[0]), coordFromI32(v[1]), coordFromI32(v[2])}
}

func readTerrain(s *blockScanner) (Terrain, error) {
	// The declared size covers one heightmap only and is not needed.
	if _, err := s.readBlockHeader(TagTerrain); err != nil {
		return Terrain{}, err
	}

	var hdr [5]uint32
	for i := range hdr {
		v, err := s.readU32(TagTerrain)
		if err != nil {
			return Terrain{}, err
		}
		hdr[i] = v
	}
	width, height, offsetsCount, blockCount, combined := hdr[0], hdr[1], hdr[2], hdr[3], hdr[4]

	mapSize, err := heightmapBlocksSize(combined, blockCount)
	if err != nil {
		return Terrain{}, err
	}

	t := Terrain{Width: width, Height: height}
	for m := Heightmap1; m <= Heightmap2; m++ {
		data, err := s.readBytes(TagTerrain, mapSize)
		if err != nil {
			return Terrain{}, err
		}
		blocks, err := decodeHeightmapBlocks(data, int(blockCount), offsetsCount)
		if err != nil {
			return Terrain{}, fmt.Errorf("heightmap %d: %w", m, err)
		}
		if m == Heightmap1 {
			t.Heightmap1Blocks = blocks
		} else {
			t.Heightmap2Blocks = blocks
		}
	}

	offsetsSize, err := s.readU32(TagTerrain)
	if err != nil {
		return Terrain{}, err
	}
	if uint64(offsetsSize) != uint64(offsetsCount)*HeightOffsetsSize {
		return Terrain{}, fmt.Errorf("%w: %d bytes for %d tables", ErrInvalidHeightOffsetsSize, offsetsSize, offsetsCount)
	}

	data, err := s.readBytes(TagTerrain, int(offsetsSize))
	if err != nil {
		return Terrain{}, err
	}
	t.HeightOffsets = make([]HeightOffsets, offsetsCount)
	for i := range t.HeightOffsets {
		copy(t.HeightOffsets[i][:], data[i*HeightOffsetsSize:])
	}

	return t, nil
}

// decodeHeightmapBlocks converts stored byte offsets into table indexes.
func decodeHeightmapBlocks(data []byte, count int, offsetsCount uint32) ([]TerrainBlock, error) {
	records := make([]terrainBlockRecord, count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadBlock, TagTerrain, err)
	}

	blocks := make([]TerrainBlock, count)
	for i, r := range records {
		if r.Offset%HeightOffsetsSize != 0 {
			return nil, fmt.Errorf("%w: block %d: offset %d is not a multiple of %d", ErrInvalidHeightOffsetsIndex, i, r.Offset, HeightOffsetsSize)
		}
		index := r.Offset / HeightOffsetsSize
		if index >= offsetsCount {
			return nil, fmt.Errorf("%w: block %d: index %d, pool has %d tables", ErrInvalidHeightOffsetsIndex, i, index, offsetsCount)
		}
		blocks[i] = TerrainBlock{BaseHeight: r.BaseHeight, OffsetIndex: index}
	}

	return blocks, nil
}

func readAttributes(s *blockScanner) (Attributes, error) {
	declared, err := s.readBlockHeader(TagAttributes)
	if err != nil {
		return Attributes{}, err
	}

	data, err := s.readBytes(TagAttributes, attributesDataSize(declared))
	if err != nil {
		return Attributes{}, err
	}

	return Attributes{
		Width:   binary.LittleEndian.Uint32(data[0:4]),
		Height:  binary.LittleEndian.Uint32(data[4:8]),
		Unknown: data[8:],
	}, nil
}

// readExcl reads EXCL. Its size is not stored, so the payload runs up to the
// MUSC tag, which is consumed here.
func readExcl(s *blockScanner) (Excl, error) {
	if err := s.expectTag(TagExcl); err != nil {
		return Excl{}, err
	}
	count, err := s.readU32(TagExcl)
	if err != nil {
		return Excl{}, err
	}

	data, err := s.readUntilTag(TagExcl, TagMusic)
	if err != nil {
		return Excl{}, err
	}

	return Excl{Count: count, Unknown: data}, nil
}

// readMusic reads the MUSC payload; its tag was consumed by readExcl. Bytes
// after the name's NUL are returned unless they are all zero.
func readMusic(s *blockScanner) (string, []byte, error) {
	data, err := s.readBytes(TagMusic, MusicFieldSize)
	if err != nil {
		return "", nil, err
	}

	name, err := decodeCStringPrefix(data)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", TagMusic, err)
	}

	padding := data[bytes.IndexByte(data, 0)+1:]
	if bytes.Count(padding, []byte{0}) == len(padding) {
		padding = nil
	}

	return name, padding, nil
}

// readTracks reads TRAC up to the EDIT tag, which is consumed here.
func readTracks(s *blockScanner) ([]Track, error) {
	if err := s.expectTag(TagTracks); err != nil {
		return nil, err
	}
	count, err := s.readU32(TagTracks)
	if err != nil {
		return nil, err
	}

	data, err := s.readUntilTag(TagTracks, TagEdit)
	if err != nil {
		return nil, err
	}

	return decodeTracks(data, count)
}

// decodeTracks parses the track payload in two passes: first every track's
// counts and control points, then every track's interpolated points.
func decodeTracks(data []byte, count uint32) ([]Track, error) {
	r := bytes.NewReader(data)
	read := func(v any) error {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, TagTracks, err)
		}
		return nil
	}

	tracks := make([]Track, 0, min(int(count), len(data)/8))
	pointCounts := make([]uint32, 0, cap(tracks))

	for i := uint32(0); i < count; i++ {
		var counts [2]uint32
		if err := read(&counts); err != nil {
			return nil, err
		}
		if uint64(counts[0])*16 > uint64(r.Len()) {
			return nil, fmt.Errorf("%w: %s: track %d claims %d control points", ErrInvalid, TagTracks, i, counts[0])
		}

		cps := make([]TrackControlPoint, counts[0])
		for j := range cps {
			var raw [4]int32
			if err := read(&raw); err != nil {
				return nil, err
			}
			flags := TrackControlPointFlags(raw[3])
			if !flags.Valid() {
				return nil, fmt.Errorf("%w: track %d point %d: %d", ErrInvalidTrackControlPointFlags, i, j, raw[3])
			}
			cps[j] = TrackControlPoint{
				X:     coordFromI32(raw[0]),
				Y:     coordFromI32(raw[1]),
				Z:     coordFromI32(raw[2]),
				Flags: flags,
			}
		}

		tracks = append(tracks, Track{ControlPoints: cps})
		pointCounts = append(pointCounts, counts[1])
	}

	for i := range tracks {
		if uint64(pointCounts[i])*12 > uint64(r.Len()) {
			return nil, fmt.Errorf("%w: %s: track %d claims %d points", ErrInvalid, TagTracks, i, pointCounts[i])
		}
		raw := make([][3]int32, pointCounts[i])
		if err := read(raw); err != nil {
			return nil, err
		}
		points := make([]Vec3, len(raw))
		for j, p := range raw {
			points[j] = vec3FromI32(p)
		}
		tracks[i].Points = points
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %s: %d bytes left after %d tracks", ErrInvalid, TagTracks, r.Len(), count)
	}

	return tracks, nil
}
