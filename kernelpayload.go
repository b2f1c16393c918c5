package clgen

import (
	"math"
	"math/rand"

	"clgen/internal/device"
)

// KernelPayload is the host+device data bound to one kernel invocation
// (§3, §4.4): one entry per kernel argument, plus the NDRange size and
// the transfer-size accounting computed at synthesis time. Grounded in
// the original cldrive.py KernelPayload / _create_payload.
type KernelPayload struct {
	ctx   device.Context
	args  []*KernelArg
	bufs  []device.MemObject

	// hostData holds the host-side byte encoding for global pointer
	// arguments only; nil for local-memory pointers and scalars (§3:
	// "Non-pointer scalars carry a single value only on the device
	// side").
	hostData [][]byte
	// scalarValue is populated for non-pointer arguments so a deep copy
	// can recreate an equal device scalar without reading it back
	// through the opaque device.MemObject interface.
	scalarValue []float64
	// localSize is populated, in bytes, for local-memory pointer
	// arguments so a deep copy can recreate a same-sized scratch buffer.
	localSize []int
	flags     []device.MemFlags

	ndrange      int
	transferSize int
}

// generator synthesizes veclength scalar values for one global pointer
// argument (§4.4: sequential / random payload generators).
type generator func(veclength int) []float64

func sequentialGenerator(veclength int) []float64 {
	out := make([]float64, veclength)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func randomGenerator(veclength int) []float64 {
	out := make([]float64, veclength)
	for i := range out {
		out[i] = rand.Float64()
	}
	return out
}

// createPayload synthesizes a KernelPayload for driver's prototype
// arguments at the given NDRange size, using gen to populate global
// pointer arguments (§4.4). Scalar (non-pointer) arguments always carry
// the literal size value, matching the original's `dtype(size)`.
func createPayload(ctx device.Context, protoArgs []*KernelArg, size int, gen generator) (*KernelPayload, error) {
	p := &KernelPayload{
		ctx:         ctx,
		args:        make([]*KernelArg, len(protoArgs)),
		bufs:        make([]device.MemObject, len(protoArgs)),
		hostData:    make([][]byte, len(protoArgs)),
		scalarValue: make([]float64, len(protoArgs)),
		localSize:   make([]int, len(protoArgs)),
		flags:       make([]device.MemFlags, len(protoArgs)),
		ndrange:     size,
	}

	transfer := 0
	for i, src := range protoArgs {
		arg := *src // shallow copy of the descriptor is sufficient; it is immutable after parsing
		p.args[i] = &arg

		veclen := size * arg.Width

		switch {
		case arg.IsPointer && arg.IsLocal:
			bufsize := veclen * arg.NumpyType.byteWidth()
			buf, err := ctx.CreateLocalBuffer(bufsize)
			if err != nil {
				return nil, ErrBadArgs(err)
			}
			p.bufs[i] = buf
			p.localSize[i] = bufsize
			arg.bufsize = bufsize

		case arg.IsPointer:
			values := gen(veclen)
			encoded, err := encodeHostValues(values, arg.NumpyType)
			if err != nil {
				return nil, ErrBadArgs(err)
			}
			p.hostData[i] = encoded
			arg.hasHost = true

			flags := device.MemCopyHostPtr
			if arg.IsConst {
				flags |= device.MemReadOnly
			} else {
				flags |= device.MemReadWrite
			}
			p.flags[i] = flags

			buf, err := ctx.CreateBuffer(flags, encoded)
			if err != nil {
				return nil, ErrBadArgs(err)
			}
			p.bufs[i] = buf

			if arg.IsConst {
				transfer += len(encoded)
			} else {
				transfer += 2 * len(encoded)
			}

		default:
			p.scalarValue[i] = float64(size)
			buf, err := ctx.CreateScalar(float64(size))
			if err != nil {
				return nil, ErrBadArgs(err)
			}
			p.bufs[i] = buf
		}
	}

	p.transferSize = transfer
	return p, nil
}

// CreateSequentialPayload synthesizes a payload whose global pointer
// arguments are populated with ascending sequential values (§4.4).
func CreateSequentialPayload(ctx device.Context, protoArgs []*KernelArg, size int) (*KernelPayload, error) {
	return createPayload(ctx, protoArgs, size, sequentialGenerator)
}

// CreateRandomPayload synthesizes a payload whose global pointer
// arguments are populated with pseudo-random values in [0, 1) (§4.4).
// Encoding truncates these toward zero, so arguments with an integer
// element type are filled with zeros.
func CreateRandomPayload(ctx device.Context, protoArgs []*KernelArg, size int) (*KernelPayload, error) {
	return createPayload(ctx, protoArgs, size, randomGenerator)
}

// Clone deep-copies the payload: host data buffers are duplicated and
// fresh device buffers are allocated from them, local scratch buffers
// are re-sized but not content-copied, and scalar arguments are
// recreated with the same value. The originating Context is shared, not
// copied (§4.4 __deepcopy__).
func (p *KernelPayload) Clone() (*KernelPayload, error) {
	clone := &KernelPayload{
		ctx:         p.ctx,
		args:        make([]*KernelArg, len(p.args)),
		bufs:        make([]device.MemObject, len(p.args)),
		hostData:    make([][]byte, len(p.args)),
		scalarValue: append([]float64(nil), p.scalarValue...),
		localSize:   append([]int(nil), p.localSize...),
		flags:       append([]device.MemFlags(nil), p.flags...),
		ndrange:     p.ndrange,
		transferSize: p.transferSize,
	}
	for i, a := range p.args {
		argCopy := *a
		clone.args[i] = &argCopy

		switch {
		case a.IsPointer && a.IsLocal:
			buf, err := p.ctx.CreateLocalBuffer(p.localSize[i])
			if err != nil {
				return nil, ErrBadArgs(err)
			}
			clone.bufs[i] = buf

		case a.IsPointer:
			data := append([]byte(nil), p.hostData[i]...)
			clone.hostData[i] = data
			buf, err := p.ctx.CreateBuffer(p.flags[i], data)
			if err != nil {
				return nil, ErrBadArgs(err)
			}
			clone.bufs[i] = buf

		default:
			buf, err := p.ctx.CreateScalar(p.scalarValue[i])
			if err != nil {
				return nil, ErrBadArgs(err)
			}
			clone.bufs[i] = buf
		}
	}
	return clone, nil
}

// Equal reports whether two payloads carry the same context, argument
// shape and values (§4.4 __eq__): local-memory arguments are scratch-only
// and are never compared (§4.4: "Local scratch buffers are never
// compared"), scalars are compared by value, and global buffers by their
// current host-side bytes.
func (p *KernelPayload) Equal(other *KernelPayload) bool {
	if p.ctx != other.ctx {
		return false
	}
	if len(p.args) != len(other.args) {
		return false
	}
	for i, a := range p.args {
		switch {
		case a.IsPointer && a.IsLocal:
			continue
		case a.IsPointer:
			if !bytesEqual(p.hostData[i], other.hostData[i]) {
				return false
			}
		default:
			if p.scalarValue[i] != other.scalarValue[i] {
				return false
			}
		}
	}
	return true
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// HostToDevice transfers every global pointer argument's host data to
// its device buffer and returns the accumulated elapsed time in
// milliseconds (§4.4 host_to_device).
func (p *KernelPayload) HostToDevice(queue device.CommandQueue) (float64, error) {
	var elapsedMs float64
	for i, a := range p.args {
		if !a.IsPointer || a.IsLocal {
			continue
		}
		ev, err := queue.EnqueueWriteBuffer(p.bufs[i], p.hostData[i])
		if err != nil {
			return elapsedMs, ErrBadProfile(err)
		}
		d, err := ev.Elapsed()
		if err != nil {
			return elapsedMs, ErrBadProfile(err)
		}
		elapsedMs += float64(d.Microseconds()) / 1000.0
	}
	return elapsedMs, nil
}

// DeviceToHost transfers every non-const global pointer argument's
// device buffer back into its host data slice and returns the
// accumulated elapsed time in milliseconds. The original cldrive.py
// computes this same event time but discards it (`get_event_time(event)`
// called without accumulation), always reporting 0; we preserve the
// documented intent ("Returns: float: Elapsed time, in milliseconds")
// rather than the apparent bug, per the resolved open question.
func (p *KernelPayload) DeviceToHost(queue device.CommandQueue) (float64, error) {
	var elapsedMs float64
	for i, a := range p.args {
		if !a.IsPointer || a.IsLocal || a.IsConst {
			continue
		}
		ev, err := queue.EnqueueReadBuffer(p.bufs[i], p.hostData[i])
		if err != nil {
			return elapsedMs, ErrBadProfile(err)
		}
		d, err := ev.Elapsed()
		if err != nil {
			return elapsedMs, ErrBadProfile(err)
		}
		elapsedMs += float64(d.Microseconds()) / 1000.0
	}
	return elapsedMs, nil
}

// Kargs returns the device buffers in argument order, ready for binding
// to a compiled kernel via device.Kernel.SetArg.
func (p *KernelPayload) Kargs() []device.MemObject { return p.bufs }

// NDRange returns the global work size this payload was synthesized for.
func (p *KernelPayload) NDRange() int { return p.ndrange }

// TransferSize returns the number of bytes this payload accounts for in
// host<->device transfer (§3 formula: const pointers counted once,
// non-const pointers counted twice, scalars not counted).
func (p *KernelPayload) TransferSize() int { return p.transferSize }

// encodeHostValues packs floating-point-valued magnitudes into the raw
// byte encoding of t (little-endian, matching t.byteWidth()), so host
// buffers are laid out identically to however a device.Context chooses
// to interpret raw bytes bound via CreateBuffer.
func encodeHostValues(values []float64, t NumericType) ([]byte, error) {
	w := t.byteWidth()
	out := make([]byte, len(values)*w)
	for i, v := range values {
		var bits uint64
		switch t {
		case TypeFloat32:
			bits = uint64(math.Float32bits(float32(v)))
		case TypeFloat64:
			bits = math.Float64bits(v)
		default:
			bits = uint64(int64(v))
		}
		for b := 0; b < w; b++ {
			out[i*w+b] = byte(bits >> (8 * b))
		}
	}
	return out, nil
}
