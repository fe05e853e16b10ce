package prj

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/woozymasta/bcn"
)

// WriteHeightmapPNG renders heightmap 1 or 2 and writes it as PNG.
func WriteHeightmapPNG(w io.Writer, t *Terrain, heightmap int) error {
	img, err := t.HeightmapImage(heightmap)
	if err != nil {
		return err
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteImage, err)
	}

	return nil
}

// WriteHeightmapDDS renders heightmap 1 or 2 and writes it as a single-level
// DDS texture. format is bcn.FormatBC4 (compressed, one channel) or
// bcn.FormatRGBA8.
func WriteHeightmapDDS(w io.Writer, t *Terrain, heightmap int, format bcn.Format) error {
	gray, err := t.HeightmapImage(heightmap)
	if err != nil {
		return err
	}

	bounds := gray.Bounds()
	width, err := u32FromInt(bounds.Dx())
	if err != nil {
		return err
	}
	height, err := u32FromInt(bounds.Dy())
	if err != nil {
		return err
	}

	header, err := makeDDSHeader(width, height, format)
	if err != nil {
		return err
	}

	img := image.NewNRGBA(bounds)
	draw.Draw(img, bounds, gray, bounds.Min, draw.Src)

	data, _, _, err := bcn.EncodeImageWithOptions(img, format, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeTexture, err)
	}
	if expected := expectedDataLength(format, bounds.Dx(), bounds.Dy()); len(data) != expected {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrEncodeTexture, expected, len(data))
	}

	if err := bcn.WriteDDSMagic(w); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteImage, err)
	}
	if err := bcn.WriteDDSHeader(w, header); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteImage, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteImage, err)
	}

	return nil
}
