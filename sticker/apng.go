package sticker

// Low-level APNG assembly. The stdlib PNG encoder produces each frame's
// pixel stream, and the frames are spliced into one animation by writing
// the acTL/fcTL/fdAT chunks around the first frame's IDAT data. Keeping
// the muxing here leaves the zlib compression level under caller control,
// which the size-budget fallback needs.
//
// Chunk layout per the APNG specification:
//   PNG signature, IHDR, acTL, fcTL(0), IDAT..., [fcTL(n), fdAT(n+1)...]*, IEND

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image/png"
	"io"
	"time"
)

const (
	apngDisposeNone uint8 = 0
	apngBlendSource uint8 = 0
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// encodedFrame is one frame's IHDR and compressed pixel data, pulled back
// out of a stdlib PNG encoding.
type encodedFrame struct {
	ihdr  []byte
	idats [][]byte
}

// encodeAPNG writes frames as one animated PNG with an infinite loop count.
// All frames must share the same dimensions; the normalizer guarantees that
// for sticker output.
func encodeAPNG(w io.Writer, frames []Frame, level png.CompressionLevel) error {
	if len(frames) < 2 {
		return errors.New("animation requires at least two frames")
	}

	enc := png.Encoder{CompressionLevel: level}
	encoded := make([]encodedFrame, 0, len(frames))
	for i, f := range frames {
		var buf bytes.Buffer
		if err := enc.Encode(&buf, f.Image); err != nil {
			return fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
		ef, err := splitPNG(buf.Bytes())
		if err != nil {
			return fmt.Errorf("failed to split frame %d: %w", i, err)
		}
		encoded = append(encoded, ef)
	}

	if _, err := w.Write(pngSignature); err != nil {
		return err
	}
	if err := writeChunk(w, "IHDR", encoded[0].ihdr); err != nil {
		return err
	}

	// acTL: frame count plus num_plays, where 0 loops forever
	actl := make([]byte, 8)
	binary.BigEndian.PutUint32(actl[0:], uint32(len(frames)))
	binary.BigEndian.PutUint32(actl[4:], 0)
	if err := writeChunk(w, "acTL", actl); err != nil {
		return err
	}

	seq := uint32(0)
	for i, ef := range encoded {
		if err := writeChunk(w, "fcTL", fctlData(seq, encoded[0].ihdr, frames[i].Delay)); err != nil {
			return err
		}
		seq++

		for _, idat := range ef.idats {
			if i == 0 {
				if err := writeChunk(w, "IDAT", idat); err != nil {
					return err
				}
				continue
			}
			fdat := make([]byte, 4+len(idat))
			binary.BigEndian.PutUint32(fdat[0:], seq)
			copy(fdat[4:], idat)
			if err := writeChunk(w, "fdAT", fdat); err != nil {
				return err
			}
			seq++
		}
	}

	return writeChunk(w, "IEND", nil)
}

// fctlData builds a frame control chunk covering the full canvas.
func fctlData(seq uint32, ihdr []byte, delay time.Duration) []byte {
	data := make([]byte, 26)
	binary.BigEndian.PutUint32(data[0:], seq)
	copy(data[4:12], ihdr[0:8]) // width, height from IHDR
	binary.BigEndian.PutUint32(data[12:], 0)
	binary.BigEndian.PutUint32(data[16:], 0)

	num, den := delayFraction(delay)
	binary.BigEndian.PutUint16(data[20:], num)
	binary.BigEndian.PutUint16(data[22:], den)
	data[24] = apngDisposeNone
	data[25] = apngBlendSource
	return data
}

// delayFraction converts a duration to the fcTL numerator/denominator pair
// in milliseconds, clamping to the uint16 field width.
func delayFraction(d time.Duration) (uint16, uint16) {
	if d <= 0 {
		d = DefaultFrameDelay
	}
	ms := d.Milliseconds()
	if ms > 65535 {
		ms = 65535
	}
	return uint16(ms), 1000
}

// splitPNG walks the chunk stream of a single-image PNG and keeps the parts
// the animation needs.
func splitPNG(data []byte) (encodedFrame, error) {
	var ef encodedFrame
	if len(data) < len(pngSignature) || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return ef, errors.New("not a png stream")
	}

	rest := data[len(pngSignature):]
	for len(rest) >= 12 {
		length := binary.BigEndian.Uint32(rest[0:4])
		if uint32(len(rest)) < 12+length {
			return ef, errors.New("truncated chunk")
		}
		typ := string(rest[4:8])
		chunk := rest[8 : 8+length]

		switch typ {
		case "IHDR":
			ef.ihdr = chunk
		case "IDAT":
			ef.idats = append(ef.idats, chunk)
		}
		rest = rest[12+length:]
	}

	if ef.ihdr == nil || len(ef.idats) == 0 {
		return ef, errors.New("png stream missing IHDR or IDAT")
	}
	return ef, nil
}

func writeChunk(w io.Writer, typ string, data []byte) error {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:], uint32(len(data)))
	copy(hdr[4:], typ)

	crc := crc32.NewIEEE()
	crc.Write(hdr[4:])
	crc.Write(data)

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], crc.Sum32())
	_, err := w.Write(tail[:])
	return err
}
