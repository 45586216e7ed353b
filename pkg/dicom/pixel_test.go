package dicom

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDecoder returns a deterministic RGB 1x1 buffer per frame.
type stubDecoder struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (d *stubDecoder) Decode(frame []byte, bits int, signed bool) (any, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.fail {
		return nil, errors.New("boom")
	}
	// One RGB pixel derived from the first fragment byte.
	v := byte(0)
	if len(frame) > 0 {
		v = frame[0]
	}
	return []uint8{v, v, v}, nil
}

// recordingObserver counts pipeline events.
type recordingObserver struct {
	mu       sync.Mutex
	decoded  []int
	loadEnds int
	progress []int
	errs     []error
}

func (o *recordingObserver) OnProgress(p int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress = append(o.progress, p)
}

func (o *recordingObserver) OnFrameDecoded(f int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decoded = append(o.decoded, f)
}

func (o *recordingObserver) OnLoadEnd() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loadEnds++
}

func (o *recordingObserver) OnError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs = append(o.errs, err)
}

func buildEncapsulated(t *testing.T, frames int) *DataSet {
	t.Helper()
	b := newFileBuilder("1.2.840.10008.1.2.4.50", false)
	b.explicitElem(0x0028, 0x0002, "US", leU16(3))
	b.explicitElem(0x0028, 0x0004, "CS", []byte("YBR_FULL"))
	b.explicitElem(0x0028, 0x0008, "IS", []byte("3 "))
	b.explicitElem(0x0028, 0x0010, "US", leU16(1))
	b.explicitElem(0x0028, 0x0011, "US", leU16(1))
	b.explicitElem(0x0028, 0x0100, "US", leU16(8))
	b.explicitUndefined(0x7FE0, 0x0010, "OB")
	b.item(0)
	for f := 0; f < frames; f++ {
		b.item(2)
		b.buf.Write([]byte{byte(10 * (f + 1)), 0})
	}
	b.delimiter(0xE0DD)

	ds, err := Parse(b.bytes())
	require.NoError(t, err)
	return ds
}

// Three fragments, three frames: one fragment per frame, decoded via the
// stub, with a single load-end after the last frame.
func TestPipeline_EncapsulatedDecode(t *testing.T) {
	ds := buildEncapsulated(t, 3)
	obs := &recordingObserver{}
	dec := &stubDecoder{}
	pipeline := NewPipeline(dec, obs)

	img, err := pipeline.Load(context.Background(), ds)
	require.NoError(t, err)
	require.NotNil(t, img)

	assert.Equal(t, 3, dec.calls)
	require.Len(t, img.Frames, 3)
	assert.Equal(t, []uint8{10, 10, 10}, img.Frames[0])
	assert.Equal(t, []uint8{20, 20, 20}, img.Frames[1])
	assert.Equal(t, []uint8{30, 30, 30}, img.Frames[2])

	// Compressed non-monochrome forces RGB per the codec contract.
	assert.Equal(t, "RGB", img.PhotometricInterpretation)

	assert.Equal(t, 1, obs.loadEnds)
	assert.Len(t, obs.decoded, 3)
	assert.Empty(t, obs.errs)

	// Progress is monotonic in the loaded count and ends at 100.
	last := 0
	for _, p := range obs.progress {
		assert.GreaterOrEqual(t, p, last)
		last = p
	}
	assert.Equal(t, 100, last)
}

func TestPipeline_DecoderFailure(t *testing.T) {
	ds := buildEncapsulated(t, 3)
	obs := &recordingObserver{}
	pipeline := NewPipeline(&stubDecoder{fail: true}, obs)

	_, err := pipeline.Load(context.Background(), ds)
	require.ErrorIs(t, err, ErrDecoderFailure)
	assert.NotEmpty(t, obs.errs)
	assert.Zero(t, obs.loadEnds)
}

func TestPipeline_NoDecoder(t *testing.T) {
	ds := buildEncapsulated(t, 3)
	pipeline := NewPipeline(nil, nil)
	_, err := pipeline.Load(context.Background(), ds)
	assert.ErrorIs(t, err, ErrDecoderFailure)
}

func TestPipeline_RegisteredDecoder(t *testing.T) {
	dec := &stubDecoder{}
	RegisterDecoder("jpeg-baseline", dec)
	defer RegisterDecoder("jpeg-baseline", nil)

	ds := buildEncapsulated(t, 3)
	pipeline := NewPipeline(nil, nil)
	img, err := pipeline.Load(context.Background(), ds)
	require.NoError(t, err)
	assert.Len(t, img.Frames, 3)
}

func TestPipeline_NativeMultiFrame(t *testing.T) {
	b := newFileBuilder("1.2.840.10008.1.2.1", false)
	b.explicitElem(0x0028, 0x0002, "US", leU16(1))
	b.explicitElem(0x0028, 0x0008, "IS", []byte("2 "))
	b.explicitElem(0x0028, 0x0010, "US", leU16(1))
	b.explicitElem(0x0028, 0x0011, "US", leU16(2))
	b.explicitElem(0x0028, 0x0100, "US", leU16(16))
	b.explicitElem(0x7FE0, 0x0010, "OW", leU16(1, 2, 3, 4))

	ds, err := Parse(b.bytes())
	require.NoError(t, err)

	obs := &recordingObserver{}
	pipeline := NewPipeline(nil, obs)
	img, err := pipeline.Load(context.Background(), ds)
	require.NoError(t, err)

	require.Len(t, img.Frames, 2)
	assert.Equal(t, []uint16{1, 2}, img.Frames[0])
	assert.Equal(t, []uint16{3, 4}, img.Frames[1])
	assert.Equal(t, 1, obs.loadEnds)
}

func TestPipeline_Abort(t *testing.T) {
	ds := buildEncapsulated(t, 3)
	pipeline := NewPipeline(&stubDecoder{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	img, err := pipeline.Load(ctx, ds)
	assert.Nil(t, img, "no partial image after abort")
	assert.Error(t, err)
}

func TestGroupFragments(t *testing.T) {
	frag := func(b byte) []byte { return []byte{b} }

	// One fragment per frame when counts match.
	out := groupFragments([][]byte{frag(1), frag(2), frag(3)}, 3)
	assert.Len(t, out, 3)

	// Even grouping when fragments divide into frames.
	out = groupFragments([][]byte{frag(1), frag(2), frag(3), frag(4)}, 2)
	require.Len(t, out, 2)
	assert.Equal(t, []byte{1, 2}, out[0])
	assert.Equal(t, []byte{3, 4}, out[1])

	// Indivisible counts fall back to one fragment per frame.
	out = groupFragments([][]byte{frag(1), frag(2), frag(3)}, 2)
	assert.Len(t, out, 3)
}

func TestSplitFrames(t *testing.T) {
	frames, err := splitFrames([]uint16{1, 2, 3, 4, 5, 6}, 3)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, []uint16{1, 2}, frames[0])
	assert.Equal(t, []uint16{5, 6}, frames[2])

	_, err = splitFrames([]uint16{1, 2, 3}, 2)
	assert.ErrorIs(t, err, ErrMalformedImage)

	frames, err = splitFrames([]uint8{9}, 1)
	require.NoError(t, err)
	assert.Equal(t, []any{[]uint8{9}}, frames)
}
