package sticker

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"
	"time"

	"github.com/kettek/apng"
	"github.com/stretchr/testify/require"
)

// noisyImage compresses poorly, which is what the budget fallbacks need.
func noisyImage(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	return img
}

func TestEncodeStaticUnderBudget(t *testing.T) {
	var buf bytes.Buffer
	frames := []Frame{{Image: solidImage(300, 300, color.NRGBA{R: 10, A: 255})}}

	res, err := Encode(&buf, frames, 500*1024)
	require.NoError(t, err)
	require.Equal(t, 1, res.Frames)
	require.False(t, res.Fallback)
	require.False(t, res.OverBudget)
	require.Equal(t, buf.Len(), res.Bytes)

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 300, decoded.Bounds().Dx())
	require.Equal(t, 300, decoded.Bounds().Dy())
}

func TestEncodeStaticBudgetFallback(t *testing.T) {
	var buf bytes.Buffer
	frames := []Frame{{Image: noisyImage(200, 200, 1)}}

	// Noise never fits a 1 KiB budget, so the best-compression retry runs
	// and the oversized result is still accepted.
	res, err := Encode(&buf, frames, 1024)
	require.NoError(t, err)
	require.True(t, res.Fallback)
	require.True(t, res.OverBudget)

	_, err = png.Decode(&buf)
	require.NoError(t, err)
}

func TestEncodeAnimatedRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	frames := []Frame{
		{Image: solidImage(64, 64, color.NRGBA{R: 255, A: 255}), Delay: 100 * time.Millisecond},
		{Image: solidImage(64, 64, color.NRGBA{G: 255, A: 255}), Delay: 50 * time.Millisecond},
		{Image: solidImage(64, 64, color.NRGBA{B: 255, A: 255}), Delay: 100 * time.Millisecond},
	}

	res, err := Encode(&buf, frames, 500*1024)
	require.NoError(t, err)
	require.Equal(t, 3, res.Frames)
	require.False(t, res.Fallback)

	decoded, err := apng.DecodeAll(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, decoded.Frames, 3)
	require.EqualValues(t, 0, decoded.LoopCount)

	for _, f := range decoded.Frames {
		require.Equal(t, 64, f.Image.Bounds().Dx())
		require.Equal(t, 64, f.Image.Bounds().Dy())
	}

	// 50ms encodes as 50/1000
	require.EqualValues(t, 50, decoded.Frames[1].DelayNumerator)
	require.EqualValues(t, 1000, decoded.Frames[1].DelayDenominator)
}

func TestEncodeAnimatedFrameReduction(t *testing.T) {
	var buf bytes.Buffer
	frames := make([]Frame, 4)
	for i := range frames {
		frames[i] = Frame{Image: noisyImage(96, 96, int64(i)), Delay: 100 * time.Millisecond}
	}

	res, err := Encode(&buf, frames, 2048)
	require.NoError(t, err)
	require.True(t, res.Fallback)
	require.Equal(t, 2, res.Frames)

	decoded, err := apng.DecodeAll(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, decoded.Frames, 2)

	// Kept frames carry doubled delays so total playback time is unchanged
	for _, f := range decoded.Frames {
		require.EqualValues(t, 200, f.DelayNumerator)
		require.EqualValues(t, 1000, f.DelayDenominator)
	}
}

func TestEncodeTwoFrameReductionDegradesToStatic(t *testing.T) {
	var buf bytes.Buffer
	frames := []Frame{
		{Image: noisyImage(96, 96, 7), Delay: 100 * time.Millisecond},
		{Image: noisyImage(96, 96, 8), Delay: 100 * time.Millisecond},
	}

	res, err := Encode(&buf, frames, 1024)
	require.NoError(t, err)
	require.True(t, res.Fallback)
	require.Equal(t, 1, res.Frames)

	// A single kept frame is a plain PNG
	_, err = png.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
}

func TestEncodeNoFrames(t *testing.T) {
	var buf bytes.Buffer
	_, err := Encode(&buf, nil, 1024)
	require.Error(t, err)
}

func TestHalveFrames(t *testing.T) {
	frames := make([]Frame, 5)
	for i := range frames {
		frames[i] = Frame{
			Image: solidImage(8, 8, color.NRGBA{A: 255}),
			Delay: time.Duration(i+1) * 10 * time.Millisecond,
		}
	}

	reduced := halveFrames(frames)
	require.Len(t, reduced, 3)
	require.Equal(t, 20*time.Millisecond, reduced[0].Delay)
	require.Equal(t, 60*time.Millisecond, reduced[1].Delay)
	require.Equal(t, 100*time.Millisecond, reduced[2].Delay)
}
