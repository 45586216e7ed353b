package dicom

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hantq/dwv.go/pkg/dicom/tag"
	"github.com/hantq/dwv.go/pkg/dicom/transfer"
)

// FrameDecoder decodes one encapsulated pixel-data frame into a typed
// numeric slice. Implementations live outside this module; the engine
// only dispatches to them.
type FrameDecoder interface {
	// Decode returns a typed slice ([]uint8, []int16, ...) of pixels.
	Decode(frame []byte, bitsAllocated int, signed bool) (any, error)
}

// decoder registry keyed by algorithm family, mirroring the transfer
// syntax mapping.
var (
	decodersMu sync.RWMutex
	decoders   = map[string]FrameDecoder{}
)

// RegisterDecoder installs a decoder for an algorithm family
// (transfer.AlgorithmJPEGBaseline, ...).
func RegisterDecoder(algorithm string, d FrameDecoder) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[algorithm] = d
}

// DecoderFor returns the registered decoder for an algorithm, or nil.
func DecoderFor(algorithm string) FrameDecoder {
	decodersMu.RLock()
	defer decodersMu.RUnlock()
	return decoders[algorithm]
}

// PipelineObserver receives pixel pipeline events. OnProgress counts are
// monotonic in loaded frames but may arrive out of frame-index order;
// OnLoadEnd fires exactly once, after the last frame completes.
type PipelineObserver interface {
	OnProgress(percent int)
	OnFrameDecoded(frame int)
	OnLoadEnd()
	OnError(err error)
}

// Pipeline turns a parsed data set into an Image: it slices or decodes
// frames and hands the result to the image factory.
type Pipeline struct {
	Decoder  FrameDecoder
	Observer PipelineObserver
	Log      *slog.Logger

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// NewPipeline builds a pipeline with an explicit decoder capability.
func NewPipeline(decoder FrameDecoder, observer PipelineObserver) *Pipeline {
	return &Pipeline{Decoder: decoder, Observer: observer}
}

func (p *Pipeline) log() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

// Abort cancels outstanding frame decodes. Load returns without
// producing a partial image.
func (p *Pipeline) Abort() {
	p.cancelMu.Lock()
	defer p.cancelMu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Load builds the Image for a data set. Native pixel data is sliced
// directly; encapsulated pixel data decodes frame 0 synchronously so the
// image carries the right photometric interpretation, then decodes the
// rest on a worker pool.
func (p *Pipeline) Load(ctx context.Context, ds *DataSet) (*Image, error) {
	elem, ok := ds.Get(tag.PixelData)
	if !ok {
		return nil, fmt.Errorf("%w: no pixel data", ErrMalformedImage)
	}
	syntax, _ := ds.TransferSyntax()
	algorithm := syntax.Algorithm()

	frags, encapsulated := elem.GetFragments()
	if algorithm != transfer.AlgorithmNone && !encapsulated {
		p.log().Warn("compressed transfer syntax carries native pixel data, reading as raw",
			"syntax", syntax.Name())
		algorithm = transfer.AlgorithmNone
	}

	if algorithm == transfer.AlgorithmNone && !encapsulated {
		return p.loadNative(ds, elem)
	}
	return p.loadEncapsulated(ctx, ds, frags, algorithm)
}

// loadNative partitions an explicit-length pixel buffer into
// number-of-frames equal slices.
func (p *Pipeline) loadNative(ds *DataSet, elem *Element) (*Image, error) {
	frames, err := splitFrames(elem.Value, ds.NumberOfFrames())
	if err != nil {
		return nil, err
	}
	img, err := NewImageFromDataSet(ds, frames[0])
	if err != nil {
		return nil, err
	}
	for _, frame := range frames[1:] {
		img.AppendFrame(frame)
	}
	p.emitProgress(len(frames), len(frames))
	p.emitLoadEnd()
	return img, nil
}

// loadEncapsulated groups fragments into frames, decodes frame 0
// synchronously, and fans the remaining frames out to workers. Decoded
// buffers land in disjoint slots; there is no shared mutable state
// between tasks beyond the parent slice.
func (p *Pipeline) loadEncapsulated(ctx context.Context, ds *DataSet, frags [][]byte, algorithm string) (*Image, error) {
	decoder := p.Decoder
	if decoder == nil {
		decoder = DecoderFor(algorithm)
	}
	if decoder == nil {
		return nil, fmt.Errorf("%w: no decoder for %s", ErrDecoderFailure, algorithm)
	}

	frameBytes := groupFragments(frags, ds.NumberOfFrames())
	n := len(frameBytes)
	bits := ds.BitsAllocated()
	if bits == 0 {
		bits = 16
	}
	signed := ds.IsSigned()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancelMu.Lock()
	p.cancel = cancel
	p.cancelMu.Unlock()
	defer cancel()

	// Frame 0 decodes before the image exists.
	first, err := decoder.Decode(frameBytes[0], bits, signed)
	if err != nil {
		err = fmt.Errorf("%w: frame 0: %v", ErrDecoderFailure, err)
		p.emitError(err)
		return nil, err
	}
	img, err := NewImageFromDataSet(ds, first)
	if err != nil {
		return nil, err
	}
	var decoded atomic.Int64
	decoded.Add(1)
	p.emitFrameDecoded(0)
	p.emitProgress(1, n)

	buffers := make([]any, n)
	buffers[0] = first

	var wg sync.WaitGroup
	var firstErr atomic.Value
	var progressMu sync.Mutex
	for f := 1; f < n; f++ {
		wg.Add(1)
		go func(f int) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			buf, err := decoder.Decode(frameBytes[f], bits, signed)
			if err != nil {
				err = fmt.Errorf("%w: frame %d: %v", ErrDecoderFailure, f, err)
				firstErr.CompareAndSwap(nil, err)
				p.emitError(err)
				return
			}
			buffers[f] = buf
			// Count and report under one lock so progress values are
			// delivered in increasing order.
			progressMu.Lock()
			p.emitFrameDecoded(f)
			p.emitProgress(int(decoded.Add(1)), n)
			progressMu.Unlock()
		}(f)
	}
	wg.Wait()

	if ctx.Err() != nil {
		// Aborted: outstanding work was dropped, no partial image.
		return nil, ctx.Err()
	}
	if err, ok := firstErr.Load().(error); ok && err != nil {
		return nil, err
	}

	for _, buf := range buffers[1:] {
		img.AppendFrame(buf)
	}
	p.emitLoadEnd()
	return img, nil
}

func (p *Pipeline) emitProgress(loaded, total int) {
	if p.Observer != nil && total > 0 {
		p.Observer.OnProgress(loaded * 100 / total)
	}
}

func (p *Pipeline) emitFrameDecoded(frame int) {
	if p.Observer != nil {
		p.Observer.OnFrameDecoded(frame)
	}
}

func (p *Pipeline) emitLoadEnd() {
	if p.Observer != nil {
		p.Observer.OnLoadEnd()
	}
}

func (p *Pipeline) emitError(err error) {
	if p.Observer != nil {
		p.Observer.OnError(err)
	}
}

// groupFragments maps encapsulated fragments to frames. When more
// fragments than frames exist and the count divides evenly, consecutive
// fragments concatenate per frame; otherwise one fragment is one frame.
func groupFragments(frags [][]byte, frames int) [][]byte {
	if frames <= 0 {
		frames = 1
	}
	if len(frags) <= frames || len(frags)%frames != 0 {
		return frags
	}
	per := len(frags) / frames
	out := make([][]byte, 0, frames)
	for f := 0; f < frames; f++ {
		var size int
		for i := 0; i < per; i++ {
			size += len(frags[f*per+i])
		}
		frame := make([]byte, 0, size)
		for i := 0; i < per; i++ {
			frame = append(frame, frags[f*per+i]...)
		}
		out = append(out, frame)
	}
	return out
}

// splitFrames partitions a native pixel buffer into equal frames.
func splitFrames(value any, frames int) ([]any, error) {
	if frames <= 1 {
		return []any{value}, nil
	}
	switch v := value.(type) {
	case []uint8:
		return splitTyped(v, frames)
	case []int8:
		return splitTyped(v, frames)
	case []uint16:
		return splitTyped(v, frames)
	case []int16:
		return splitTyped(v, frames)
	case []uint32:
		return splitTyped(v, frames)
	case []int32:
		return splitTyped(v, frames)
	case []float32:
		return splitTyped(v, frames)
	case []float64:
		return splitTyped(v, frames)
	}
	return nil, fmt.Errorf("%w: pixel data type %T cannot be partitioned", ErrMalformedImage, value)
}

func splitTyped[T any](buf []T, frames int) ([]any, error) {
	if len(buf)%frames != 0 {
		return nil, fmt.Errorf("%w: %d values do not partition into %d frames",
			ErrMalformedImage, len(buf), frames)
	}
	per := len(buf) / frames
	out := make([]any, 0, frames)
	for f := 0; f < frames; f++ {
		frame := make([]T, per)
		copy(frame, buf[f*per:(f+1)*per])
		out = append(out, frame)
	}
	return out, nil
}
