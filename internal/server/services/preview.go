package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/oxtoacart/bpool"
	"golang.org/x/image/draw"

	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// maxPreviewDim caps either side of a preview.
const maxPreviewDim = 4096

// maxSourcePixels bounds the decoded size of a source image; the header is
// checked before any pixel is decoded.
var maxSourcePixels = maxPreviewDim * maxPreviewDim * 4

// Preview is an encoded preview image.
type Preview struct {
	Data        []byte
	ContentType string
}

// Previewer decodes an image and scales it to fit a box, never upscaling.
type Previewer struct {
	buffers *bpool.BufferPool
}

func NewPreviewer(poolSize int) *Previewer {
	return &Previewer{buffers: bpool.NewBufferPool(poolSize)}
}

// Render decodes r and scales it to fit within width×height. A
// non-positive side leaves that dimension unconstrained. JPEG input stays
// JPEG; everything else, including the first frame of a GIF, is encoded
// as PNG.
func (p *Previewer) Render(r io.Reader, width, height int) (*Preview, error) {
	head := p.buffers.Get()
	defer p.buffers.Put(head)

	cfg, _, err := image.DecodeConfig(io.TeeReader(r, head))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxSourcePixels/cfg.Height {
		return nil, fmt.Errorf("%w: image of %dx%d pixels is too large to preview", common.ErrValidation, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(io.MultiReader(bytes.NewReader(head.Bytes()), r))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrNotImage, err)
	}

	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), width, height)

	var img image.Image = src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		img = dst
	}

	buf := p.buffers.Get()
	defer p.buffers.Put(buf)

	out := &Preview{}
	switch format {
	case "jpeg":
		out.ContentType = "image/jpeg"
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: 85})
	default:
		out.ContentType = "image/png"
		err = png.Encode(buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	out.Data = bytes.Clone(buf.Bytes())
	return out, nil
}

func fitWithin(srcW, srcH, maxW, maxH int) (int, int) {
	if maxW <= 0 || maxW > maxPreviewDim {
		maxW = min(srcW, maxPreviewDim)
	}
	if maxH <= 0 || maxH > maxPreviewDim {
		maxH = min(srcH, maxPreviewDim)
	}
	if srcW <= maxW && srcH <= maxH {
		return srcW, srcH
	}
	scale := math.Min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	w := max(1, int(math.Round(float64(srcW)*scale)))
	h := max(1, int(math.Round(float64(srcH)*scale)))
	return w, h
}
