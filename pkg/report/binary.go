package report

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/maxscore/pkg/safeconv"
)

// Binary layout constants.
const (
	// uint32ByteSize is the number of bytes in a uint32.
	uint32ByteSize = 4
	// flagCompressed marks an LZ4-compressed position block.
	flagCompressed uint8 = 1
	// maxDecodeSegments bounds the segment count DecodeBinary will allocate for.
	maxDecodeSegments = 1 << 26
)

// binaryMagic opens every binary report.
var binaryMagic = [4]byte{'M', 'X', 'S', '1'}

// ErrCorrupt indicates a binary report that cannot be decoded.
var ErrCorrupt = errors.New("corrupt binary report")

// binaryHeader is the fixed-size prefix of a binary report.
type binaryHeader struct {
	Magic      [4]byte
	Flags      uint8
	Threshold  float64
	Elements   uint32
	Count      uint32
	PayloadLen uint32
}

// binaryCodec writes the header, the segment bounds as delta-encoded uint32s
// (LZ4-compressed when that helps), then one float64 score per segment.
type binaryCodec struct{}

func (binaryCodec) Name() string { return FormatBin }

func (binaryCodec) Encode(w io.Writer, r *Report) error {
	elements, err := safeconv.ToUint32(r.Elements)
	if err != nil {
		return fmt.Errorf("element count: %w", err)
	}

	count, err := safeconv.ToUint32(len(r.Segments))
	if err != nil {
		return fmt.Errorf("segment count: %w", err)
	}

	bounds := make([]uint32, 0, 2*len(r.Segments))

	for _, seg := range r.Segments {
		begin, beginErr := safeconv.ToUint32(seg.Begin)
		end, endErr := safeconv.ToUint32(seg.End)

		if err = errors.Join(beginErr, endErr); err != nil {
			return fmt.Errorf("segment %s: %w", seg.Range(), err)
		}

		bounds = append(bounds, begin, end)
	}

	deltaEncode(bounds)

	raw := new(bytes.Buffer)

	err = binary.Write(raw, binary.LittleEndian, bounds)
	if err != nil {
		return fmt.Errorf("encode bounds: %w", err)
	}

	hdr := binaryHeader{Magic: binaryMagic, Threshold: r.Threshold, Elements: elements, Count: count}

	payload := raw.Bytes()
	if compressed := compressBlock(payload); compressed != nil {
		payload = compressed
		hdr.Flags |= flagCompressed
	}

	hdr.PayloadLen, err = safeconv.ToUint32(len(payload))
	if err != nil {
		return fmt.Errorf("payload size: %w", err)
	}

	out := new(bytes.Buffer)

	err = binary.Write(out, binary.LittleEndian, hdr)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	out.Write(payload)

	scores := make([]float64, len(r.Segments))
	for i, seg := range r.Segments {
		scores[i] = seg.Score
	}

	err = binary.Write(out, binary.LittleEndian, scores)
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}

	_, err = w.Write(out.Bytes())
	if err != nil {
		return fmt.Errorf("write binary report: %w", err)
	}

	return nil
}

// DecodeBinary reads a report written by the bin format. Stats and segment
// values are not part of the format and come back zero.
func DecodeBinary(r io.Reader) (*Report, error) {
	var hdr binaryHeader

	err := binary.Read(r, binary.LittleEndian, &hdr)
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}

	if hdr.Magic != binaryMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, hdr.Magic[:])
	}

	if hdr.Count > maxDecodeSegments || math.IsNaN(hdr.Threshold) {
		return nil, fmt.Errorf("%w: implausible header", ErrCorrupt)
	}

	rawLen := int(hdr.Count) * 2 * uint32ByteSize

	maxPayload := rawLen
	if hdr.Flags&flagCompressed != 0 {
		maxPayload = lz4.CompressBlockBound(rawLen)
	}

	if int64(hdr.PayloadLen) > int64(maxPayload) {
		return nil, fmt.Errorf("%w: payload of %d bytes for %d segments", ErrCorrupt, hdr.PayloadLen, hdr.Count)
	}

	payload := make([]byte, hdr.PayloadLen)

	_, err = io.ReadFull(r, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrCorrupt, err)
	}

	raw := payload

	if hdr.Flags&flagCompressed != 0 {
		raw = make([]byte, rawLen)

		n, uncompressErr := lz4.UncompressBlock(payload, raw)
		if uncompressErr != nil || n != rawLen {
			return nil, fmt.Errorf("%w: position block does not decompress", ErrCorrupt)
		}
	}

	if len(raw) != rawLen {
		return nil, fmt.Errorf("%w: position block is %d bytes, want %d", ErrCorrupt, len(raw), rawLen)
	}

	bounds := make([]uint32, 2*hdr.Count)

	err = binary.Read(bytes.NewReader(raw), binary.LittleEndian, bounds)
	if err != nil {
		return nil, fmt.Errorf("%w: positions: %w", ErrCorrupt, err)
	}

	deltaDecode(bounds)

	scores := make([]float64, hdr.Count)

	err = binary.Read(r, binary.LittleEndian, scores)
	if err != nil {
		return nil, fmt.Errorf("%w: scores: %w", ErrCorrupt, err)
	}

	rep := &Report{
		Threshold: hdr.Threshold,
		Elements:  safeconv.ToInt(hdr.Elements),
		Segments:  make([]Segment, hdr.Count),
	}

	for i := range rep.Segments {
		seg := Segment{
			Begin: safeconv.ToInt(bounds[2*i]),
			End:   safeconv.ToInt(bounds[2*i+1]),
			Score: scores[i],
		}

		if seg.Begin > seg.End || seg.End > rep.Elements {
			return nil, fmt.Errorf("%w: segment %d is [%d,%d) of %d elements", ErrCorrupt, i, seg.Begin, seg.End, rep.Elements)
		}

		rep.Segments[i] = seg
	}

	return rep, nil
}

// compressBlock compresses data with LZ4. It returns nil when the block does
// not compress.
func compressBlock(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))

	written, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil || written == 0 || written >= len(data) {
		return nil
	}

	return compressed[:written]
}

// deltaEncode replaces each element with the difference from its
// predecessor, in place. Ascending bounds become small repetitive values.
func deltaEncode(data []uint32) {
	for i := len(data) - 1; i > 0; i-- {
		data[i] -= data[i-1]
	}
}

// deltaDecode restores values produced by deltaEncode, in place.
func deltaDecode(data []uint32) {
	for i := 1; i < len(data); i++ {
		data[i] += data[i-1]
	}
}
