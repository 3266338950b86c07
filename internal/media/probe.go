// Package media extracts the true playable duration from uploaded video
// containers. The probe parses container metadata directly instead of
// trusting the nominal plan length, and every probe is bounded by the
// caller's context so a corrupt file fails the upload instead of hanging it.
package media

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrUnsupported means the declared media type has no probe.
	ErrUnsupported = errors.New("unsupported media type")

	// ErrNoDuration means the container parsed but carried no usable
	// duration metadata.
	ErrNoDuration = errors.New("no duration metadata found")
)

type probeResult struct {
	duration time.Duration
	err      error
}

// ProbeDuration returns the playable duration declared by the container
// metadata of data. It honors ctx cancellation and deadline.
func ProbeDuration(ctx context.Context, contentType string, data []byte) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("duration probe aborted: %w", err)
	}

	done := make(chan probeResult, 1)
	go func() {
		var res probeResult
		switch contentType {
		case "video/mp4":
			res.duration, res.err = parseMP4Duration(data)
		case "video/webm":
			res.duration, res.err = parseWebMDuration(data)
		default:
			res.err = fmt.Errorf("%w: %s", ErrUnsupported, contentType)
		}
		done <- res
	}()

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("duration probe aborted: %w", ctx.Err())
	case res := <-done:
		return res.duration, res.err
	}
}

// parseMP4Duration walks top-level boxes to moov/mvhd and reads the movie
// timescale and duration.
func parseMP4Duration(data []byte) (time.Duration, error) {
	moov, err := findBox(data, "moov")
	if err != nil {
		return 0, err
	}
	mvhd, err := findBox(moov, "mvhd")
	if err != nil {
		return 0, err
	}
	if len(mvhd) < 4 {
		return 0, fmt.Errorf("mvhd box truncated: %w", ErrNoDuration)
	}

	version := mvhd[0]
	var timescale uint32
	var duration uint64
	switch version {
	case 0:
		// version+flags(4) creation(4) modification(4) timescale(4) duration(4)
		if len(mvhd) < 20 {
			return 0, fmt.Errorf("mvhd v0 truncated: %w", ErrNoDuration)
		}
		timescale = binary.BigEndian.Uint32(mvhd[12:16])
		duration = uint64(binary.BigEndian.Uint32(mvhd[16:20]))
	case 1:
		// version+flags(4) creation(8) modification(8) timescale(4) duration(8)
		if len(mvhd) < 32 {
			return 0, fmt.Errorf("mvhd v1 truncated: %w", ErrNoDuration)
		}
		timescale = binary.BigEndian.Uint32(mvhd[20:24])
		duration = binary.BigEndian.Uint64(mvhd[24:32])
	default:
		return 0, fmt.Errorf("unknown mvhd version %d: %w", version, ErrNoDuration)
	}

	if timescale == 0 {
		return 0, fmt.Errorf("zero timescale: %w", ErrNoDuration)
	}
	seconds := float64(duration) / float64(timescale)
	return time.Duration(seconds * float64(time.Second)), nil
}

// findBox returns the body of the first box with the given type at this
// nesting level.
func findBox(data []byte, boxType string) ([]byte, error) {
	pos := 0
	for pos+8 <= len(data) {
		size := uint64(binary.BigEndian.Uint32(data[pos : pos+4]))
		typ := string(data[pos+4 : pos+8])
		headerLen := 8

		switch size {
		case 0:
			// box extends to end of data
			size = uint64(len(data) - pos)
		case 1:
			if pos+16 > len(data) {
				return nil, fmt.Errorf("box %s header truncated: %w", typ, ErrNoDuration)
			}
			size = binary.BigEndian.Uint64(data[pos+8 : pos+16])
			headerLen = 16
		}
		if size < uint64(headerLen) || uint64(pos)+size > uint64(len(data)) {
			return nil, fmt.Errorf("box %s size out of range: %w", typ, ErrNoDuration)
		}

		if typ == boxType {
			return data[pos+headerLen : uint64(pos)+size], nil
		}
		pos += int(size)
	}
	return nil, fmt.Errorf("box %s not found: %w", boxType, ErrNoDuration)
}

// Matroska/WebM element ids used by the probe.
const (
	ebmlIDHeader         = 0x1A45DFA3
	ebmlIDSegment        = 0x18538067
	ebmlIDInfo           = 0x1549A966
	ebmlIDTimestampScale = 0x2AD7B1
	ebmlIDDuration       = 0x4489
)

// parseWebMDuration descends Segment > Info and combines TimestampScale
// (defaults to 1ms) with the float Duration element.
func parseWebMDuration(data []byte) (time.Duration, error) {
	segment, err := ebmlFind(data, ebmlIDSegment)
	if err != nil {
		return 0, err
	}
	info, err := ebmlFind(segment, ebmlIDInfo)
	if err != nil {
		return 0, err
	}

	var scale uint64 = 1000000 // nanoseconds per tick
	var duration float64
	var haveDuration bool

	pos := 0
	for pos < len(info) {
		id, size, headerLen, err := ebmlReadHeader(info[pos:])
		if err != nil {
			return 0, err
		}
		body := info[pos+headerLen : pos+headerLen+int(size)]
		switch id {
		case ebmlIDTimestampScale:
			scale = ebmlUint(body)
		case ebmlIDDuration:
			duration, err = ebmlFloat(body)
			if err != nil {
				return 0, err
			}
			haveDuration = true
		}
		pos += headerLen + int(size)
	}

	if !haveDuration {
		return 0, fmt.Errorf("webm info has no duration: %w", ErrNoDuration)
	}
	return time.Duration(duration * float64(scale)), nil
}

// ebmlFind returns the body of the first element with the given id at this
// nesting level.
func ebmlFind(data []byte, target uint64) ([]byte, error) {
	pos := 0
	for pos < len(data) {
		id, size, headerLen, err := ebmlReadHeader(data[pos:])
		if err != nil {
			return nil, err
		}
		if id == target {
			return data[pos+headerLen : pos+headerLen+int(size)], nil
		}
		pos += headerLen + int(size)
	}
	return nil, fmt.Errorf("ebml element %x not found: %w", target, ErrNoDuration)
}

// ebmlReadHeader decodes an element id and size, returning the header length.
func ebmlReadHeader(data []byte) (id uint64, size uint64, headerLen int, err error) {
	id, idLen, err := ebmlReadVarint(data, false)
	if err != nil {
		return 0, 0, 0, err
	}
	size, sizeLen, err := ebmlReadVarint(data[idLen:], true)
	if err != nil {
		return 0, 0, 0, err
	}
	headerLen = idLen + sizeLen
	if uint64(len(data)) < uint64(headerLen)+size {
		return 0, 0, 0, fmt.Errorf("ebml element %x truncated: %w", id, ErrNoDuration)
	}
	return id, size, headerLen, nil
}

// ebmlReadVarint reads a variable-length integer. Element ids keep their
// length-marker bit; sizes strip it.
func ebmlReadVarint(data []byte, stripMarker bool) (uint64, int, error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("ebml varint truncated: %w", ErrNoDuration)
	}
	first := data[0]
	if first == 0 {
		return 0, 0, fmt.Errorf("invalid ebml varint: %w", ErrNoDuration)
	}
	length := 1
	for mask := byte(0x80); first&mask == 0; mask >>= 1 {
		length++
	}
	if length > 8 || len(data) < length {
		return 0, 0, fmt.Errorf("ebml varint truncated: %w", ErrNoDuration)
	}

	var value uint64
	for i := 0; i < length; i++ {
		value = value<<8 | uint64(data[i])
	}
	if stripMarker {
		value &^= uint64(1) << uint(7*length)
	}
	return value, length, nil
}

func ebmlUint(data []byte) uint64 {
	var value uint64
	for _, b := range data {
		value = value<<8 | uint64(b)
	}
	return value
}

func ebmlFloat(data []byte) (float64, error) {
	switch len(data) {
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(data))), nil
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
	default:
		return 0, fmt.Errorf("ebml float of %d bytes: %w", len(data), ErrNoDuration)
	}
}
