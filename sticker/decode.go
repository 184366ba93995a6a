package sticker

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"time"

	"golang.org/x/image/webp"
)

// DefaultFrameDelay is used when an animated source carries no timing.
const DefaultFrameDelay = 100 * time.Millisecond

// FileType identifies a decodable raster format.
type FileType uint

const (
	UNKNOWN FileType = iota
	JPEG
	PNG
	GIF
	WEBP
)

// Frame is one decoded image surface. Delay is only meaningful when the
// frame belongs to an animation.
type Frame struct {
	Image image.Image
	Delay time.Duration
}

// Decode reads an image file and returns its frames. Static sources yield a
// single frame; animated GIFs yield one fully composited frame per source
// frame. The format is sniffed from the leading bytes, not the extension.
func Decode(fileName string) ([]Frame, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return decodeImageData(data)
}

func decodeImageData(data []byte) ([]Frame, error) {
	r := bytes.NewReader(data)

	var img image.Image
	var err error
	switch GetFileType(data) {
	case JPEG:
		img, err = jpeg.Decode(r)
	case PNG:
		img, err = png.Decode(r)
	case GIF:
		return decodeGIF(r)
	case WEBP:
		img, err = webp.Decode(r)
	case UNKNOWN:
		fallthrough
	default:
		return nil, errors.New("unsupported file type")
	}
	if err != nil {
		return nil, err
	}

	return []Frame{{Image: img}}, nil
}

// decodeGIF extracts every frame of a GIF, compositing partial frames onto
// a shared canvas so each returned frame is a complete surface. Delays
// convert from GIF 1/100s units; zero delays fall back to DefaultFrameDelay.
func decodeGIF(r *bytes.Reader) ([]Frame, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, err
	}
	if len(g.Image) == 0 {
		return nil, errors.New("gif contains no frames")
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}

	canvas := image.NewRGBA(bounds)
	frames := make([]Frame, 0, len(g.Image))

	for i, src := range g.Image {
		var restore *image.RGBA
		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalPrevious {
			restore = cloneRGBA(canvas)
		}

		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)
		frames = append(frames, Frame{
			Image: cloneRGBA(canvas),
			Delay: gifDelay(g.Delay, i),
		})

		if i < len(g.Disposal) {
			switch g.Disposal[i] {
			case gif.DisposalBackground:
				draw.Draw(canvas, src.Bounds(), image.Transparent, image.Point{}, draw.Src)
			case gif.DisposalPrevious:
				canvas = restore
			}
		}
	}

	return frames, nil
}

func gifDelay(delays []int, i int) time.Duration {
	if i >= len(delays) || delays[i] <= 0 {
		return DefaultFrameDelay
	}
	return time.Duration(delays[i]) * 10 * time.Millisecond
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// IsAnimated reports whether the file decodes to more than one frame. Only
// GIF can in the accepted input set, so everything else is answered from
// the sniffed type without a full decode.
func IsAnimated(fileName string) (bool, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return false, fmt.Errorf("failed to read image: %w", err)
	}
	if GetFileType(data) != GIF {
		return false, nil
	}

	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return false, err
	}
	return len(g.Image) > 1, nil
}

// GetFileType sniffs the image format from the leading magic bytes.
func GetFileType(buf []byte) FileType {
	switch {
	case isJpeg(buf):
		return JPEG
	case isPng(buf):
		return PNG
	case isGif(buf):
		return GIF
	case isWebp(buf):
		return WEBP
	default:
		return UNKNOWN
	}
}

func isJpeg(buf []byte) bool {
	return len(buf) > 2 &&
		buf[0] == 0xFF &&
		buf[1] == 0xD8 &&
		buf[2] == 0xFF
}

func isPng(buf []byte) bool {
	return len(buf) > 3 &&
		buf[0] == 0x89 && buf[1] == 0x50 &&
		buf[2] == 0x4E && buf[3] == 0x47
}

func isGif(buf []byte) bool {
	return len(buf) > 2 &&
		buf[0] == 0x47 && buf[1] == 0x49 && buf[2] == 0x46
}

func isWebp(buf []byte) bool {
	return len(buf) > 11 &&
		buf[8] == 0x57 && buf[9] == 0x45 &&
		buf[10] == 0x42 && buf[11] == 0x50
}
