package prj

import "strings"

// Heightmap selectors for Terrain queries.
const (
	Heightmap1 = 1
	Heightmap2 = 2
)

// Project is a decoded battle project.
type Project struct {
	// BaseModelFileName is the base model, e.g. "base.M3D", relative to the
	// directory of the project file.
	BaseModelFileName string `json:"base_model_file_name"`
	// WaterModelFileName is the water model, e.g. "_7water.M3D". Empty means
	// the project has no water model. Some projects put other overlay models
	// here.
	WaterModelFileName string `json:"water_model_file_name,omitempty"`
	// FurnitureModelFileNames are referenced by Instance slots, 1-based.
	FurnitureModelFileNames []string     `json:"furniture_model_file_names"`
	Instances               []Instance   `json:"instances"`
	Terrain                 Terrain      `json:"terrain"`
	Attributes              Attributes   `json:"attributes"`
	Excl                    Excl         `json:"excl"`
	// BackgroundMusicScriptFileName is the music script, e.g. "battle1.fsm".
	BackgroundMusicScriptFileName string `json:"background_music_script_file_name"`
	// BackgroundMusicScriptPadding is the rest of the fixed MUSC field after
	// the name's NUL, kept when it is not all zero. It is written back only
	// while it still fills the field exactly; otherwise the field is NUL
	// padded.
	BackgroundMusicScriptPadding []byte  `json:"background_music_script_padding,omitempty"`
	Tracks                       []Track `json:"tracks"`
	// Edit holds the trailing EDIT block verbatim.
	Edit []byte `json:"edit"`
}

// BaseM3XModelFileName returns the base model name with the extension
// replaced by M3X, the chunked version rendered in game.
func (p *Project) BaseM3XModelFileName() string {
	name := strings.ReplaceAll(p.BaseModelFileName, ".m3d", ".m3x")
	return strings.ReplaceAll(name, ".M3D", ".M3X")
}

// HasWaterModel reports whether the project has a water model.
func (p *Project) HasWaterModel() bool {
	return p.WaterModelFileName != ""
}

// FurnitureModelFileName resolves a 1-based furniture slot. Slot 0 and slots
// past the list report false.
func (p *Project) FurnitureModelFileName(slot uint32) (string, bool) {
	if slot == 0 || uint64(slot) > uint64(len(p.FurnitureModelFileNames)) {
		return "", false
	}

	return p.FurnitureModelFileNames[slot-1], true
}

// Vec3 is a decoded fixed-point triple.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Instance is one placed scenery object.
type Instance struct {
	// Editor linkage, not used at runtime.
	Prev     int32 `json:"prev"`
	Next     int32 `json:"next"`
	Selected int32 `json:"selected"`

	ExcludeFromTerrain int32 `json:"exclude_from_terrain"`
	Position           Vec3  `json:"position"`
	Rotation           Vec3  `json:"rotation"`
	AABBMin            Vec3  `json:"aabb_min"`
	AABBMax            Vec3  `json:"aabb_max"`
	// FurnitureModelSlot is 1-based; 0 means no model.
	FurnitureModelSlot uint32 `json:"furniture_model_slot"`
	ModelID            int32  `json:"model_id"`
	Attackable         int32  `json:"attackable"`
	Toughness          int32  `json:"toughness"`
	Wounds             int32  `json:"wounds"`
	Unknown1           int32  `json:"unknown1"`
	OwnerUnitIndex     int32  `json:"owner_unit_index"`
	Burnable           int32  `json:"burnable"`
	SFXCode            uint32 `json:"sfx_code"`
	// GFXCode selects an animated effect, e.g. windmill sails. Instances with
	// a GFX code always have a furniture model.
	GFXCode                  uint32 `json:"gfx_code"`
	Locked                   int32  `json:"locked"`
	ExcludeFromTerrainShadow int32  `json:"exclude_from_terrain_shadow"`
	ExcludeFromWalk          int32  `json:"exclude_from_walk"`
	MagicItemCode            uint32 `json:"magic_item_code"`
	ParticleEffectCode       uint32 `json:"particle_effect_code"`
	// FurnitureDeadModelSlot is 1-based; 0 means no model.
	FurnitureDeadModelSlot uint32 `json:"furniture_dead_model_slot"`
	DeadModelID            int32  `json:"dead_model_id"`
	Light                  int32  `json:"light"`
	LightRadius            int32  `json:"light_radius"`
	LightAmbient           int32  `json:"light_ambient"`
	Unknown2               int32  `json:"unknown2"`
	Unknown3               int32  `json:"unknown3"`
}

// Terrain holds both compressed heightmaps. Width and Height are in pixels;
// every block covers an 8x8 pixel tile.
type Terrain struct {
	Width            uint32          `json:"width"`
	Height           uint32          `json:"height"`
	Heightmap1Blocks []TerrainBlock  `json:"heightmap1_blocks"`
	Heightmap2Blocks []TerrainBlock  `json:"heightmap2_blocks"`
	HeightOffsets    []HeightOffsets `json:"height_offsets"`
}

// TerrainBlock is one macroblock of a heightmap.
type TerrainBlock struct {
	// BaseHeight is scaled by 1024.
	BaseHeight int32 `json:"base_height"`
	// OffsetIndex indexes Terrain.HeightOffsets. On disk it is a byte offset.
	OffsetIndex uint32 `json:"offset_index"`
}

// HeightOffsets is one offset table, a sample per pixel of an 8x8 tile in
// row-major order. Samples are scaled by 8.
type HeightOffsets [HeightOffsetsSize]byte

// Attributes repeats the terrain size followed by opaque data.
type Attributes struct {
	Width   uint32 `json:"width"`
	Height  uint32 `json:"height"`
	Unknown []byte `json:"unknown"`
}

// Excl is the exclusion record, preserved verbatim.
type Excl struct {
	Count   uint32 `json:"count"`
	Unknown []byte `json:"unknown"`
}

// Track is a camera or animation path.
type Track struct {
	ControlPoints []TrackControlPoint `json:"control_points"`
	// Points are the baked curve samples. They are stored, never recomputed.
	Points []Vec3 `json:"points"`
}

// TrackControlPoint is an authored curve handle.
type TrackControlPoint struct {
	X     float64                `json:"x"`
	Y     float64                `json:"y"`
	Z     float64                `json:"z"`
	Flags TrackControlPointFlags `json:"flags"`
}

// TrackControlPointFlags is the closed flag set of a control point.
type TrackControlPointFlags uint32

// Known control point flags. Their meaning is not known.
const (
	TrackControlPointFlagsNone TrackControlPointFlags = 0
	TrackControlPointFlag1     TrackControlPointFlags = 1 << 0
	TrackControlPointFlag2     TrackControlPointFlags = 1 << 1
)

// Valid reports whether f is one of the values found in game files.
func (f TrackControlPointFlags) Valid() bool {
	switch f {
	case TrackControlPointFlagsNone, TrackControlPointFlag1, TrackControlPointFlag2:
		return true
	default:
		return false
	}
}
