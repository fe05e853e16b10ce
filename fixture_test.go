package prj

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// rawFixture describes a small project file written byte by byte, without
// going through the encoder.
type rawFixture struct {
	signature      string
	furnitureTag   string
	furniture      []string
	furnitureDelta int
	instanceWords  []uint32
	width, height  uint32
	heightmap1     [][2]uint32
	heightmap2     [][2]uint32
	offsetsCount   uint32
	combined       uint32
	offsetsSize    uint32
	tables         [][HeightOffsetsSize]byte
	attrUnknown    []byte
	exclCount      uint32
	excl           []byte
	music          []byte
	tracks         []rawTrack
	edit           []byte
}

type rawTrack struct {
	controlPoints [][4]int32
	points        [][3]int32
}

func newRawFixture() *rawFixture {
	words := make([]uint32, InstanceSize/4)
	for i := range words {
		words[i] = uint32(i + 1)
	}

	var t0, t1 [HeightOffsetsSize]byte
	for i := range t0 {
		t0[i] = byte(i)
		t1[i] = 8
	}

	music := make([]byte, MusicFieldSize)
	copy(music, "battle1.fsm")

	return &rawFixture{
		signature:     Signature,
		furnitureTag:  TagFurniture,
		furniture:     []string{"_4barrel.m3d", "_khut3_d.m3d"},
		instanceWords: words,
		width:         16,
		height:        8,
		heightmap1:    [][2]uint32{{1024, 0}, {2048, 64}},
		heightmap2:    [][2]uint32{{uint32(0xFFFFFC00), 64}, {0, 0}}, // -1024
		offsetsCount:  2,
		combined:      32,
		offsetsSize:   128,
		tables:        [][HeightOffsetsSize]byte{t0, t1},
		attrUnknown:   bytes.Repeat([]byte{0xAB}, 60),
		exclCount:     3,
		excl:          []byte{0x01, 'M', 'U', 'S', 0x02, 'U', 'S', 'C', 0x00, 'M'},
		music:         music,
		tracks: []rawTrack{
			{
				controlPoints: [][4]int32{{1024, 2048, -512, 0}, {4096, 0, 0, 1}},
				points:        [][3]int32{{1, 2, 3}, {4, 5, 6}, {-7, -8, -9}},
			},
			{
				controlPoints: [][4]int32{{10, 20, 30, 2}},
				points:        [][3]int32{{100, 200, 300}},
			},
		},
		edit: []byte{0x00, 0x01, 'e', 'd', 'i', 't', 'o', 'r'},
	}
}

type rawWriter struct {
	bytes.Buffer
}

func (w *rawWriter) u32(v uint32) {
	_ = binary.Write(&w.Buffer, binary.LittleEndian, v)
}

func (w *rawWriter) i32(v int32) {
	_ = binary.Write(&w.Buffer, binary.LittleEndian, v)
}

func cstr(s string) []byte {
	return append([]byte(s), 0)
}

func (f *rawFixture) bytes(t *testing.T) []byte {
	t.Helper()

	var w rawWriter
	w.WriteString(f.signature)

	base := cstr("base.M3D")
	w.WriteString(TagBase)
	w.u32(uint32(len(base)))
	w.Write(base)

	water := cstr("_7water.M3D")
	w.WriteString(TagWater)
	w.u32(uint32(len(water)))
	w.Write(water)

	var names rawWriter
	stringBytes := 0
	for _, name := range f.furniture {
		b := cstr(name)
		names.u32(uint32(len(b)))
		names.Write(b)
		stringBytes += len(b)
	}
	w.WriteString(f.furnitureTag)
	w.u32(uint32(stringBytes + 4 + f.furnitureDelta))
	w.u32(uint32(len(f.furniture)))
	w.Write(names.Bytes())

	w.WriteString(TagInstances)
	w.u32(InstanceSize)
	w.u32(1)
	w.u32(InstanceSize)
	for _, v := range f.instanceWords {
		w.u32(v)
	}

	w.WriteString(TagTerrain)
	w.u32(uint32(20 + len(f.heightmap1)*8 + 4 + len(f.tables)*HeightOffsetsSize))
	w.u32(f.width)
	w.u32(f.height)
	w.u32(f.offsetsCount)
	w.u32(uint32(len(f.heightmap1)))
	w.u32(f.combined)
	for _, b := range f.heightmap1 {
		w.u32(b[0])
		w.u32(b[1])
	}
	for _, b := range f.heightmap2 {
		w.u32(b[0])
		w.u32(b[1])
	}
	w.u32(f.offsetsSize)
	for _, table := range f.tables {
		w.Write(table[:])
	}

	w.WriteString(TagAttributes)
	w.u32(uint32(8 + len(f.attrUnknown) - 64))
	w.u32(f.width)
	w.u32(f.height)
	w.Write(f.attrUnknown)

	w.WriteString(TagExcl)
	w.u32(f.exclCount)
	w.Write(f.excl)

	w.WriteString(TagMusic)
	w.Write(f.music)

	w.WriteString(TagTracks)
	w.u32(uint32(len(f.tracks)))
	for _, tr := range f.tracks {
		w.u32(uint32(len(tr.controlPoints)))
		w.u32(uint32(len(tr.points)))
		for _, cp := range tr.controlPoints {
			for _, v := range cp {
				w.i32(v)
			}
		}
	}
	for _, tr := range f.tracks {
		for _, p := range tr.points {
			for _, v := range p {
				w.i32(v)
			}
		}
	}

	w.WriteString(TagEdit)
	w.Write(f.edit)

	return w.Bytes()
}

// testTerrain builds a width x height pixel terrain where every block of
// heightmap 1 has base height baseHeight and uses an all-zero offset table.
func testTerrain(width, height uint32, baseHeight int32) Terrain {
	t := Terrain{Width: width, Height: height, HeightOffsets: make([]HeightOffsets, 1)}
	n := t.TilesPerRow() * int((height+TileSize-1)/TileSize)
	t.Heightmap1Blocks = make([]TerrainBlock, n)
	t.Heightmap2Blocks = make([]TerrainBlock, n)
	for i := range t.Heightmap1Blocks {
		t.Heightmap1Blocks[i].BaseHeight = baseHeight
	}

	return t
}

// testProject is a complete project built in memory.
func testProject() *Project {
	return &Project{
		BaseModelFileName:       "base.M3D",
		WaterModelFileName:      "_7water.M3D",
		FurnitureModelFileNames: []string{"_4barrel.m3d", "_4fence.m3d", "_khut3_d.m3d"},
		Instances: []Instance{
			{
				Prev:               -1,
				Next:               1,
				Position:           Vec3{X: 100.5, Y: 12.25, Z: 300},
				Rotation:           Vec3{X: 0, Y: 0.5, Z: 0.000244140625},
				AABBMin:            Vec3{X: -1.5, Y: 0, Z: -2},
				AABBMax:            Vec3{X: 1.5, Y: 3, Z: 2},
				FurnitureModelSlot: 2,
				GFXCode:            7,
				Toughness:          10,
				Wounds:             3,
			},
			{Prev: 0, Next: -1, FurnitureModelSlot: 0, SFXCode: 4},
		},
		Terrain: Terrain{
			Width:            16,
			Height:           16,
			Heightmap1Blocks: []TerrainBlock{{1024, 0}, {2048, 1}, {0, 1}, {-512, 0}},
			Heightmap2Blocks: []TerrainBlock{{0, 0}, {0, 0}, {512, 1}, {1, 1}},
			HeightOffsets:    []HeightOffsets{{}, {1, 2, 3, 4, 5, 6, 7, 8}},
		},
		Attributes: Attributes{Width: 16, Height: 16, Unknown: bytes.Repeat([]byte{1, 2, 3, 4}, 20)},
		Excl:       Excl{Count: 1, Unknown: []byte{9, 8, 7}},

		BackgroundMusicScriptFileName: "battle1.fsm",
		Tracks: []Track{
			{
				ControlPoints: []TrackControlPoint{{X: 1, Y: 2, Z: 3}, {X: -1, Y: 0.5, Z: 0, Flags: TrackControlPointFlag2}},
				Points:        []Vec3{{X: 1, Y: 1, Z: 1}},
			},
			{
				ControlPoints: []TrackControlPoint{{X: 4, Y: 5, Z: 6, Flags: TrackControlPointFlag1}},
				Points:        []Vec3{{X: 2, Y: 2, Z: 2}, {X: 3, Y: 3, Z: 3}},
			},
		},
		Edit: []byte("trailing editor state"),
	}
}
