package sticker

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"os"
)

// EncodeResult describes how an encode run went.
type EncodeResult struct {
	Bytes      int
	Frames     int
	Fallback   bool
	OverBudget bool
}

// Encode writes frames as a PNG (static) or APNG (animated) and enforces
// the byte budget. A static image over budget is re-encoded once at best
// compression and accepted as-is. An animation over budget keeps every
// second frame with doubled delays and is re-encoded once at best
// compression; there is no further degradation in either case.
func Encode(w io.Writer, frames []Frame, budget int64) (EncodeResult, error) {
	if len(frames) == 0 {
		return EncodeResult{}, fmt.Errorf("no frames to encode")
	}
	if len(frames) == 1 {
		return encodeStatic(w, frames[0], budget)
	}
	return encodeAnimated(w, frames, budget)
}

func encodeStatic(w io.Writer, frame Frame, budget int64) (EncodeResult, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, frame.Image); err != nil {
		return EncodeResult{}, fmt.Errorf("failed to encode png: %w", err)
	}

	res := EncodeResult{Frames: 1}
	if int64(buf.Len()) > budget {
		buf.Reset()
		enc.CompressionLevel = png.BestCompression
		if err := enc.Encode(&buf, frame.Image); err != nil {
			return EncodeResult{}, fmt.Errorf("failed to encode png: %w", err)
		}
		res.Fallback = true
	}

	res.Bytes = buf.Len()
	res.OverBudget = int64(buf.Len()) > budget
	_, err := w.Write(buf.Bytes())
	return res, err
}

func encodeAnimated(w io.Writer, frames []Frame, budget int64) (EncodeResult, error) {
	var buf bytes.Buffer
	if err := encodeAPNG(&buf, frames, png.DefaultCompression); err != nil {
		return EncodeResult{}, fmt.Errorf("failed to encode apng: %w", err)
	}

	res := EncodeResult{Frames: len(frames)}
	if int64(buf.Len()) > budget {
		reduced := halveFrames(frames)
		buf.Reset()
		if len(reduced) == 1 {
			r, err := encodeStatic(w, reduced[0], budget)
			r.Fallback = true
			return r, err
		}
		if err := encodeAPNG(&buf, reduced, png.BestCompression); err != nil {
			return EncodeResult{}, fmt.Errorf("failed to encode apng: %w", err)
		}
		res.Frames = len(reduced)
		res.Fallback = true
	}

	res.Bytes = buf.Len()
	res.OverBudget = int64(buf.Len()) > budget
	_, err := w.Write(buf.Bytes())
	return res, err
}

// halveFrames keeps every second frame starting at the first and doubles
// each kept delay, preserving total playback duration up to the rounding a
// trailing odd frame introduces.
func halveFrames(frames []Frame) []Frame {
	reduced := make([]Frame, 0, (len(frames)+1)/2)
	for i := 0; i < len(frames); i += 2 {
		d := frames[i].Delay
		if d <= 0 {
			d = DefaultFrameDelay
		}
		reduced = append(reduced, Frame{Image: frames[i].Image, Delay: d * 2})
	}
	return reduced
}

// WriteFile encodes frames to path, creating or truncating it.
func WriteFile(path string, frames []Frame, budget int64) (EncodeResult, error) {
	out, err := os.Create(path)
	if err != nil {
		return EncodeResult{}, fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	res, err := Encode(out, frames, budget)
	if err != nil {
		return res, err
	}
	return res, out.Close()
}
