package signals

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	// Register decoders for the allowed image formats.
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// minTrustedDPI is the horizontal resolution below which an image looks
// re-photographed rather than scanned from an original.
const minTrustedDPI = 150

// imageMetadata holds the structural facts read from an image before rule
// evaluation.
type imageMetadata struct {
	format   string
	mode     string
	width    int
	height   int
	exifTags map[string]string
	dpiX     int
	dpiY     int
	hasDPI   bool
}

func (m *imageMetadata) toMap() map[string]any {
	meta := map[string]any{
		"format": m.format,
		"mode":   m.mode,
		"width":  m.width,
		"height": m.height,
		"exif":   m.exifTags,
	}
	if m.hasDPI {
		meta["dpi"] = []int{m.dpiX, m.dpiY}
	} else {
		meta["dpi"] = nil
	}
	return meta
}

func extractImage(data []byte) *Bundle {
	meta, err := readImageMetadata(data)
	if err != nil {
		return errorBundle(err)
	}

	b := newBundle()
	b.Metadata = meta.toMap()
	applyImageRules(b, meta)
	return b
}

func readImageMetadata(data []byte) (*imageMetadata, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	meta := &imageMetadata{
		format:   format,
		mode:     colorMode(cfg.ColorModel),
		width:    cfg.Width,
		height:   cfg.Height,
		exifTags: map[string]string{},
	}

	// EXIF is optional: PNGs and stripped JPEGs simply have none, which is
	// itself a signal handled by the rules below.
	if x, err := exif.Decode(bytes.NewReader(data)); err == nil {
		walker := &exifCollector{tags: meta.exifTags}
		_ = x.Walk(walker)

		if xr, err := x.Get(exif.XResolution); err == nil {
			if num, den, err := xr.Rat2(0); err == nil && den != 0 {
				meta.dpiX = int(num / den)
				meta.hasDPI = true
			}
		}
		if yr, err := x.Get(exif.YResolution); err == nil {
			if num, den, err := yr.Rat2(0); err == nil && den != 0 {
				meta.dpiY = int(num / den)
			}
		}
	}

	// Camera exports often carry density only in the JFIF APP0 header,
	// not in EXIF.
	if !meta.hasDPI && format == "jpeg" {
		if xd, yd := jfifDensity(data); xd > 0 {
			meta.dpiX = xd
			meta.dpiY = yd
			meta.hasDPI = true
		}
	}

	return meta, nil
}

// jfifDensity reads the pixel density declared in a JPEG's JFIF APP0
// segment. Returns zeros when the segment is absent or declares aspect
// ratio units only. Dots per centimetre convert to DPI.
func jfifDensity(data []byte) (x, y int) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, 0
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return 0, 0
		}
		marker := data[i+1]
		// Standalone markers carry no length field.
		if marker == 0x01 || (marker >= 0xD0 && marker <= 0xD9) {
			i += 2
			continue
		}
		// No headers past the start of scan.
		if marker == 0xDA {
			return 0, 0
		}
		length := int(data[i+2])<<8 | int(data[i+3])
		if length < 2 || i+2+length > len(data) {
			return 0, 0
		}
		if marker == 0xE0 {
			seg := data[i+4 : i+2+length]
			if len(seg) >= 12 && string(seg[:5]) == "JFIF\x00" {
				xd := int(seg[8])<<8 | int(seg[9])
				yd := int(seg[10])<<8 | int(seg[11])
				switch seg[7] {
				case 1: // dots per inch
					return xd, yd
				case 2: // dots per centimetre
					return int(float64(xd)*2.54 + 0.5), int(float64(yd)*2.54 + 0.5)
				}
			}
		}
		i += 2 + length
	}
	return 0, 0
}

// exifCollector copies EXIF fields into a plain string map.
type exifCollector struct {
	tags map[string]string
}

func (c *exifCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c.tags[string(name)] = tag.String()
	return nil
}

// applyImageRules classifies image facts. Every image submission starts
// with the baseline flag: an image is inherently less trustworthy than a
// native PDF export.
func applyImageRules(b *Bundle, meta *imageMetadata) {
	b.flag("Document submitted as image rather than original PDF")

	if meta.format == "png" && len(meta.exifTags) == 0 {
		b.flag("PNG with no EXIF data - likely a screenshot")
	}

	if meta.hasDPI && meta.dpiX < minTrustedDPI {
		b.flag("Low resolution (%d DPI) - may indicate re-photographed document", meta.dpiX)
	}
}

func colorMode(m color.Model) string {
	switch m {
	case color.GrayModel, color.Gray16Model:
		return "grayscale"
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model:
		return "rgba"
	case color.YCbCrModel:
		return "ycbcr"
	case color.CMYKModel:
		return "cmyk"
	}
	if _, ok := m.(color.Palette); ok {
		return "paletted"
	}
	return "unknown"
}
