package prj

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Write encodes p and writes it to path. The file is not created if
// encoding fails.
func Write(path string, p *Project) error {
	data, err := encodeProject(p)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrCreateFile, path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrWriteProject, path, err)
	}

	return f.Close()
}

// Encode writes p to w. Sizes and counts are recomputed from p. Nothing is
// written unless the whole project encodes.
func Encode(w io.Writer, p *Project) error {
	data, err := encodeProject(p)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteProject, err)
	}

	return nil
}

func encodeProject(p *Project) ([]byte, error) {
	w := &blockWriter{}
	w.writeTag(Signature)

	steps := []func(*blockWriter, *Project) error{
		writeBase,
		writeWater,
		writeFurniture,
		writeInstances,
		writeTerrain,
		writeAttributes,
		writeExcl,
		writeMusic,
		writeTracks,
		writeEdit,
	}
	for _, step := range steps {
		if err := step(w, p); err != nil {
			return nil, err
		}
	}

	return w.buf.Bytes(), nil
}

// writeStringBlock writes a C-string block with an exact declared size.
func writeStringBlock(w *blockWriter, tag, s string) error {
	b, err := encodeCString(s)
	if err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}
	size, err := u32FromInt(len(b))
	if err != nil {
		return err
	}

	w.writeBlockHeader(tag, size)
	w.write(b)
	return nil
}

func writeBase(w *blockWriter, p *Project) error {
	return writeStringBlock(w, TagBase, p.BaseModelFileName)
}

// writeWater writes a single NUL when there is no water model.
func writeWater(w *blockWriter, p *Project) error {
	return writeStringBlock(w, TagWater, p.WaterModelFileName)
}

func writeFurniture(w *blockWriter, p *Project) error {
	data := &blockWriter{}
	for i, name := range p.FurnitureModelFileNames {
		b, err := encodeCString(name)
		if err != nil {
			return fmt.Errorf("%s: entry %d: %w", TagFurniture, i, err)
		}
		n, err := u32FromInt(len(b))
		if err != nil {
			return err
		}
		data.writeU32(n)
		data.write(b)
	}

	count, err := u32FromInt(len(p.FurnitureModelFileNames))
	if err != nil {
		return err
	}
	declared, err := furnitureDeclaredSize(data.buf.Len(), len(p.FurnitureModelFileNames))
	if err != nil {
		return err
	}

	w.writeBlockHeader(TagFurniture, declared)
	w.writeU32(count)
	w.write(data.buf.Bytes())
	return nil
}

func writeInstances(w *blockWriter, p *Project) error {
	count, err := u32FromInt(len(p.Instances))
	if err != nil {
		return err
	}
	size, err := u32FromInt(len(p.Instances) * InstanceSize)
	if err != nil {
		return err
	}

	records := make([]instanceRecord, len(p.Instances))
	for i := range p.Instances {
		if records[i], err = instanceToRecord(&p.Instances[i]); err != nil {
			return fmt.Errorf("%s: instance %d: %w", TagInstances, i, err)
		}
	}

	w.writeBlockHeader(TagInstances, size)
	w.writeU32(count)
	w.writeU32(InstanceSize)
	if err := w.writeStruct(records); err != nil {
		return fmt.Errorf("%s: %w", TagInstances, err)
	}

	return nil
}

func instanceToRecord(i *Instance) (instanceRecord, error) {
	position, err := vec3ToU32(i.Position, positionToU32)
	if err != nil {
		return instanceRecord{}, fmt.Errorf("position: %w", err)
	}
	rotation, err := vec3ToU32(i.Rotation, rotationToU32)
	if err != nil {
		return instanceRecord{}, fmt.Errorf("rotation: %w", err)
	}
	aabbMin, err := vec3ToI32(i.AABBMin)
	if err != nil {
		return instanceRecord{}, fmt.Errorf("aabb min: %w", err)
	}
	aabbMax, err := vec3ToI32(i.AABBMax)
	if err != nil {
		return instanceRecord{}, fmt.Errorf("aabb max: %w", err)
	}

	return instanceRecord{
		Prev:                     i.Prev,
		Next:                     i.Next,
		Selected:                 i.Selected,
		ExcludeFromTerrain:       i.ExcludeFromTerrain,
		Position:                 position,
		Rotation:                 rotation,
		AABBMin:                  aabbMin,
		AABBMax:                  aabbMax,
		FurnitureModelSlot:       i.FurnitureModelSlot,
		ModelID:                  i.ModelID,
		Attackable:               i.Attackable,
		Toughness:                i.Toughness,
		Wounds:                   i.Wounds,
		Unknown1:                 i.Unknown1,
		OwnerUnitIndex:           i.OwnerUnitIndex,
		Burnable:                 i.Burnable,
		SFXCode:                  i.SFXCode,
		GFXCode:                  i.GFXCode,
		Locked:                   i.Locked,
		ExcludeFromTerrainShadow: i.ExcludeFromTerrainShadow,
		ExcludeFromWalk:          i.ExcludeFromWalk,
		MagicItemCode:            i.MagicItemCode,
		ParticleEffectCode:       i.ParticleEffectCode,
		FurnitureDeadModelSlot:   i.FurnitureDeadModelSlot,
		DeadModelID:              i.DeadModelID,
		Light:                    i.Light,
		LightRadius:              i.LightRadius,
		LightAmbient:             i.LightAmbient,
		Unknown2:                 i.Unknown2,
		Unknown3:                 i.Unknown3,
	}, nil
}

func vec3ToU32(v Vec3, conv func(float64) (uint32, error)) ([3]uint32, error) {
	var out [3]uint32
	for i, c := range [3]float64{v.X, v.Y, v.Z} {
		u, err := conv(c)
		if err != nil {
			return out, err
		}
		out[i] = u
	}

	return out, nil
}

func vec3ToI32(v Vec3) ([3]int32, error) {
	var out [3]int32
	for i, c := range [3]float64{v.X, v.Y, v.Z} {
		n, err := coordToI32(c)
		if err != nil {
			return out, err
		}
		out[i] = n
	}

	return out, nil
}

func writeTerrain(w *blockWriter, p *Project) error {
	t := &p.Terrain
	if len(t.Heightmap1Blocks) != len(t.Heightmap2Blocks) {
		return fmt.Errorf("%w: %d and %d", ErrHeightmapBlockCountMismatch, len(t.Heightmap1Blocks), len(t.Heightmap2Blocks))
	}

	declared, err := terrainDeclaredSize(len(t.Heightmap1Blocks), len(t.HeightOffsets))
	if err != nil {
		return err
	}
	offsetsCount, err := u32FromInt(len(t.HeightOffsets))
	if err != nil {
		return err
	}
	blockCount, err := u32FromInt(len(t.Heightmap1Blocks))
	if err != nil {
		return err
	}
	combined, err := u32FromInt(2 * len(t.Heightmap1Blocks) * terrainBlockSize)
	if err != nil {
		return err
	}
	offsetsSize, err := u32FromInt(len(t.HeightOffsets) * HeightOffsetsSize)
	if err != nil {
		return err
	}

	w.writeBlockHeader(TagTerrain, declared)
	w.writeU32(t.Width)
	w.writeU32(t.Height)
	w.writeU32(offsetsCount)
	w.writeU32(blockCount)
	w.writeU32(combined)

	for m, blocks := range [][]TerrainBlock{t.Heightmap1Blocks, t.Heightmap2Blocks} {
		for i, b := range blocks {
			if b.OffsetIndex >= offsetsCount {
				return fmt.Errorf("%w: heightmap %d block %d: index %d, pool has %d tables", ErrInvalidHeightOffsetsIndex, m+1, i, b.OffsetIndex, offsetsCount)
			}
			w.writeI32(b.BaseHeight)
			w.writeU32(b.OffsetIndex * HeightOffsetsSize)
		}
	}

	w.writeU32(offsetsSize)
	for i := range t.HeightOffsets {
		w.write(t.HeightOffsets[i][:])
	}

	return nil
}

func writeAttributes(w *blockWriter, p *Project) error {
	a := &p.Attributes
	declared, err := attributesDeclaredSize(8 + len(a.Unknown))
	if err != nil {
		return fmt.Errorf("%s: %w", TagAttributes, err)
	}

	w.writeBlockHeader(TagAttributes, declared)
	w.writeU32(a.Width)
	w.writeU32(a.Height)
	w.write(a.Unknown)
	return nil
}

// writeExcl writes EXCL without a size. The payload must not contain the MUSC
// tag or it would end early on the next read.
func writeExcl(w *blockWriter, p *Project) error {
	if bytes.Contains(p.Excl.Unknown, []byte(TagMusic)) {
		return fmt.Errorf("%w: %s contains %s", ErrMarkerInPayload, TagExcl, TagMusic)
	}

	w.writeTag(TagExcl)
	w.writeU32(p.Excl.Count)
	w.write(p.Excl.Unknown)
	return nil
}

func writeMusic(w *blockWriter, p *Project) error {
	b, err := encodeFixedCString(p.BackgroundMusicScriptFileName, MusicFieldSize)
	if err != nil {
		return fmt.Errorf("%s: %w", TagMusic, err)
	}

	// padding only belongs to a name of its original length
	if n := MusicFieldSize - len(p.BackgroundMusicScriptPadding); bytes.IndexByte(b, 0) == n-1 {
		copy(b[n:], p.BackgroundMusicScriptPadding)
	}

	w.writeTag(TagMusic)
	w.write(b)
	return nil
}

// writeTracks writes every track's counts and control points before any
// track's interpolated points.
func writeTracks(w *blockWriter, p *Project) error {
	count, err := u32FromInt(len(p.Tracks))
	if err != nil {
		return err
	}

	body := &blockWriter{}
	for i := range p.Tracks {
		t := &p.Tracks[i]
		cpCount, err := u32FromInt(len(t.ControlPoints))
		if err != nil {
			return err
		}
		pointCount, err := u32FromInt(len(t.Points))
		if err != nil {
			return err
		}
		body.writeU32(cpCount)
		body.writeU32(pointCount)

		for j, cp := range t.ControlPoints {
			if !cp.Flags.Valid() {
				return fmt.Errorf("%w: track %d point %d: %d", ErrInvalidTrackControlPointFlags, i, j, cp.Flags)
			}
			v, err := vec3ToI32(Vec3{X: cp.X, Y: cp.Y, Z: cp.Z})
			if err != nil {
				return fmt.Errorf("%s: track %d control point %d: %w", TagTracks, i, j, err)
			}
			body.writeI32(v[0])
			body.writeI32(v[1])
			body.writeI32(v[2])
			body.writeU32(uint32(cp.Flags))
		}
	}
	for i := range p.Tracks {
		for j, pt := range p.Tracks[i].Points {
			v, err := vec3ToI32(pt)
			if err != nil {
				return fmt.Errorf("%s: track %d point %d: %w", TagTracks, i, j, err)
			}
			body.writeI32(v[0])
			body.writeI32(v[1])
			body.writeI32(v[2])
		}
	}

	if bytes.Contains(body.buf.Bytes(), []byte(TagEdit)) {
		return fmt.Errorf("%w: %s contains %s", ErrMarkerInPayload, TagTracks, TagEdit)
	}

	w.writeTag(TagTracks)
	w.writeU32(count)
	w.write(body.buf.Bytes())
	return nil
}

func writeEdit(w *blockWriter, p *Project) error {
	w.writeTag(TagEdit)
	w.write(p.Edit)
	return nil
}
