package simdevice

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"clgen/internal/device"
)

// deviceID is the single simulated DeviceID a Context exposes.
type deviceID struct {
	name string
	typ  device.Type
}

func (d *deviceID) Name() string      { return d.name }
func (d *deviceID) Type() device.Type { return d.typ }

// event is a completed operation handle; since everything here runs
// synchronously in-process, Elapsed just reports the wall-clock time the
// operation actually took, matching the OpenCL profiling-event contract
// the driver consumes (§4.6).
type event struct {
	elapsed time.Duration
	err     error
}

func (e *event) Elapsed() (time.Duration, error) { return e.elapsed, e.err }

func timed(fn func() error) device.Event {
	start := time.Now()
	err := fn()
	return &event{elapsed: time.Since(start), err: err}
}

// memObject is a host-resident stand-in for a device buffer. It stores
// raw bytes at whatever width the caller declared (matching the real
// host buffer's encoding byte-for-byte) — the interpreter only ever
// decodes them into float64 at kernel-launch time, keyed by the element
// width/signedness the compiled kernel's argument declared.
type memObject struct {
	data []byte
}

func (m *memObject) Size() int { return len(m.data) }

// commandQueue serializes buffer and kernel operations against one
// Context, mirroring device.CommandQueue.
type commandQueue struct{}

func (q *commandQueue) Flush() error { return nil }

func (q *commandQueue) EnqueueWriteBuffer(buf device.MemObject, data []byte) (device.Event, error) {
	mo, ok := buf.(*memObject)
	if !ok {
		return nil, fmt.Errorf("simdevice: foreign MemObject")
	}
	return timed(func() error {
		n := len(data)
		if n > len(mo.data) {
			n = len(mo.data)
		}
		copy(mo.data, data[:n])
		return nil
	}), nil
}

func (q *commandQueue) EnqueueReadBuffer(buf device.MemObject, data []byte) (device.Event, error) {
	mo, ok := buf.(*memObject)
	if !ok {
		return nil, fmt.Errorf("simdevice: foreign MemObject")
	}
	return timed(func() error {
		n := len(mo.data)
		if n > len(data) {
			n = len(data)
		}
		copy(data, mo.data[:n])
		return nil
	}), nil
}

func (q *commandQueue) EnqueueNDRangeKernel(k device.Kernel, globalSize, localSize int) (device.Event, error) {
	kern, ok := k.(*kernel)
	if !ok {
		return nil, fmt.Errorf("simdevice: foreign Kernel")
	}
	return timed(func() error {
		return kern.launch(globalSize)
	}), nil
}

// context is the single simulated compute Context.
type context struct {
	id *deviceID
}

// NewContext constructs a reference Context for use by tests and the
// illustrative CLI, standing in for whatever a real Compiler would
// return from discovering a platform/device pair (§4.5 construction).
func NewContext(deviceType device.Type) device.Context {
	return &context{id: &deviceID{name: "simdevice0", typ: deviceType}}
}

func (c *context) DeviceID() device.DeviceID { return c.id }

func (c *context) CreateBuffer(flags device.MemFlags, data []byte) (device.MemObject, error) {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &memObject{data: buf}, nil
}

func (c *context) CreateLocalBuffer(size int) (device.MemObject, error) {
	if size <= 0 {
		size = 1
	}
	return &memObject{data: make([]byte, size)}, nil
}

func (c *context) CreateScalar(value interface{}) (device.MemObject, error) {
	v, err := toFloat64(value)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 8)
	putFloat64(buf, v)
	return &memObject{data: buf}, nil
}

// NewCommandQueue returns a CommandQueue bound to ctx, matching the
// OpenCL pattern of one queue per (context, device) pair (§5).
func NewCommandQueue(ctx device.Context) (device.CommandQueue, error) {
	if _, ok := ctx.(*context); !ok {
		return nil, fmt.Errorf("simdevice: foreign Context")
	}
	return &commandQueue{}, nil
}

// elemType is the local, minimal element-type descriptor simdevice needs
// to decode/encode a kernel argument's raw device buffer around a
// kernel launch. It deliberately duplicates the small scalar type table
// clgen.NumericType carries (rather than importing the root package,
// which would create an import cycle since clgen constructs a Compiler
// from this package).
type elemType struct {
	width    int
	isFloat  bool
	unsigned bool
}

var bareElemTypes = map[string]elemType{
	"char":           {1, false, false},
	"uchar":          {1, false, true},
	"unsigned char":  {1, false, true},
	"short":          {2, false, false},
	"ushort":         {2, false, true},
	"unsigned short": {2, false, true},
	"int":            {4, false, false},
	"uint":           {4, false, true},
	"unsigned int":   {4, false, true},
	"unsigned":       {4, false, true},
	"long":           {8, false, false},
	"ulong":          {8, false, true},
	"unsigned long":  {8, false, true},
	"float":          {4, true, false},
	"double":         {8, true, false},
	"bool":           {1, false, false},
	"size_t":         {8, false, true},
}

// parseElemType extracts the scalar element type behind a declared
// kernel argument type (after stripping any pointer/address-space
// qualifiers the caller has already removed), honoring a trailing
// vector-width digit run the same way kernelarg.go's splitVectorAndPointer
// does, e.g. "float4" -> float, "int32" -> int.
func parseElemType(bareType string) (elemType, bool) {
	t := strings.TrimSpace(bareType)
	if et, ok := bareElemTypes[t]; ok {
		return et, true
	}
	end := len(t)
	for end > 0 && t[end-1] >= '0' && t[end-1] <= '9' {
		end--
	}
	if end > 0 && end < len(t) {
		if et, ok := bareElemTypes[t[:end]]; ok {
			if _, err := strconv.Atoi(t[end:]); err == nil {
				return et, true
			}
		}
	}
	return elemType{}, false
}

// kernelArgDecl is what Compiler.Build extracts per argument: enough to
// decode/encode its bound buffer and feed it to the interpreter.
type kernelArgDecl struct {
	name      string
	elem      elemType
	isPointer bool
}

// kernel is a single compiled, runnable kernel function.
type kernel struct {
	name string
	decl []kernelArgDecl
	bufs []*memObject
	body string
}

func (k *kernel) FunctionName() string { return k.name }

func (k *kernel) SetArg(index int, arg device.MemObject) error {
	if index < 0 || index >= len(k.decl) {
		return fmt.Errorf("simdevice: argument index %d out of range for kernel %q", index, k.name)
	}
	mo, ok := arg.(*memObject)
	if !ok {
		return fmt.Errorf("simdevice: foreign MemObject bound to kernel %q", k.name)
	}
	k.bufs[index] = mo
	return nil
}

// launch interprets the kernel body once per work-item in [0, globalSize),
// decoding every bound buffer into float64 for the duration of the
// invocation and re-encoding any array argument back into its native
// byte width afterward.
func (k *kernel) launch(globalSize int) error {
	for i, d := range k.decl {
		if k.bufs[i] == nil {
			return fmt.Errorf("simdevice: argument %q unbound at launch", d.name)
		}
	}

	decoded := make([][]float64, len(k.decl))
	for i, d := range k.decl {
		if !d.isPointer {
			// Scalar arguments always arrive through Context.CreateScalar,
			// which encodes its value as a single 8-byte float64 regardless
			// of the kernel's declared scalar type — unlike buffer
			// arguments, which carry their own host-controlled byte layout.
			vals, err := decodeBuffer(k.bufs[i].data, elemType{width: 8, isFloat: true})
			if err != nil {
				return fmt.Errorf("simdevice: argument %q: %w", d.name, err)
			}
			decoded[i] = vals
			continue
		}
		vals, err := decodeBuffer(k.bufs[i].data, d.elem)
		if err != nil {
			return fmt.Errorf("simdevice: argument %q: %w", d.name, err)
		}
		decoded[i] = vals
	}

	for gid := 0; gid < globalSize; gid++ {
		e := &env{
			globalID:   gid,
			globalSize: globalSize,
			scalars:    map[string]float64{},
			arrays:     map[string][]float64{},
		}
		for i, d := range k.decl {
			if d.isPointer {
				e.arrays[d.name] = decoded[i]
			} else {
				e.scalars[d.name] = decoded[i][0]
			}
		}
		if err := run(k.body, e); err != nil {
			return err
		}
	}

	for i, d := range k.decl {
		if !d.isPointer {
			continue
		}
		if err := encodeBuffer(decoded[i], k.bufs[i].data, d.elem); err != nil {
			return fmt.Errorf("simdevice: argument %q: %w", d.name, err)
		}
	}
	return nil
}

// program holds the kernels extracted from one compiled source unit.
type program struct {
	kernels []device.Kernel
}

func (p *program) Kernels() ([]device.Kernel, error) {
	if len(p.kernels) == 0 {
		return nil, fmt.Errorf("simdevice: program has no kernels")
	}
	return p.kernels, nil
}

var kernelDeclRe = regexp.MustCompile(`__kernel\s+void\s+([A-Za-z_]\w*)\s*\(([^)]*)\)\s*\{`)

// Compiler is a reference device.Compiler that performs only the checks
// source compilation is documented to perform (§4.5): syntactic presence
// of well-formed __kernel declarations with parseable argument lists. It
// does not type-check kernel bodies against full C semantics, matching
// the deliberately narrow scope of this in-process backend.
type Compiler struct{}

// NewCompiler returns a reference Compiler.
func NewCompiler() *Compiler { return &Compiler{} }

func (c *Compiler) Build(ctx device.Context, source string) (device.Program, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("simdevice: empty source")
	}
	if !balancedBraces(source) {
		return nil, fmt.Errorf("simdevice: unbalanced braces in source")
	}
	matches := kernelDeclRe.FindAllStringSubmatchIndex(source, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("simdevice: no __kernel function found")
	}

	var kernels []device.Kernel
	for _, m := range matches {
		name := source[m[2]:m[3]]
		argList := source[m[4]:m[5]]
		body, err := extractBody(source[m[0]:])
		if err != nil {
			return nil, err
		}
		decls, err := parseArgDecls(argList)
		if err != nil {
			return nil, err
		}
		kernels = append(kernels, &kernel{
			name: name,
			decl: decls,
			bufs: make([]*memObject, len(decls)),
			body: body,
		})
	}
	return &program{kernels: kernels}, nil
}

// parseArgDecls does a minimal parse of a kernel argument list sufficient
// to decode/encode bound buffers: qualifiers, pointer-ness, element type,
// and the argument name.
func parseArgDecls(argList string) ([]kernelArgDecl, error) {
	normalized := strings.Join(strings.Fields(strings.ReplaceAll(argList, "*", "* ")), " ")
	if normalized == "" {
		return nil, nil
	}
	var decls []kernelArgDecl
	for _, rawArg := range strings.Split(normalized, ",") {
		rawArg = strings.TrimSpace(rawArg)
		if rawArg == "" {
			continue
		}
		fields := strings.Fields(rawArg)
		if len(fields) < 2 {
			return nil, fmt.Errorf("simdevice: malformed kernel argument %q", rawArg)
		}
		name := fields[len(fields)-1]
		var typeTokens []string
		isPointer := false
		for _, f := range fields[:len(fields)-1] {
			switch f {
			case "__global", "global", "__local", "local", "__constant", "constant",
				"const", "__restrict", "restrict", "__private", "private":
				continue
			default:
				if strings.HasSuffix(f, "*") {
					isPointer = true
					f = strings.TrimSuffix(f, "*")
				}
				if f != "" {
					typeTokens = append(typeTokens, f)
				}
			}
		}
		bare := strings.Join(typeTokens, " ")
		et, ok := parseElemType(bare)
		if !ok {
			return nil, fmt.Errorf("simdevice: unsupported element type %q in %q", bare, rawArg)
		}
		decls = append(decls, kernelArgDecl{name: name, elem: et, isPointer: isPointer})
	}
	return decls, nil
}

func balancedBraces(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("simdevice: unsupported scalar value type %T", v)
	}
}

func putFloat64(buf []byte, v float64) {
	bits := math.Float64bits(v)
	for b := 0; b < 8; b++ {
		buf[b] = byte(bits >> (8 * b))
	}
}

// decodeBuffer reads raw buffer bytes as a sequence of et-typed elements
// and returns them widened to float64 for interpretation.
func decodeBuffer(data []byte, et elemType) ([]float64, error) {
	w := et.width
	if w == 0 {
		return nil, fmt.Errorf("zero-width element type")
	}
	n := len(data) / w
	if n == 0 {
		n = 1
		padded := make([]byte, w)
		copy(padded, data)
		data = padded
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		chunk := data[i*w : i*w+w]
		out[i] = decodeScalar(chunk, et)
	}
	return out, nil
}

func decodeScalar(chunk []byte, et elemType) float64 {
	var bits uint64
	for b := 0; b < len(chunk); b++ {
		bits |= uint64(chunk[b]) << (8 * b)
	}
	switch {
	case et.isFloat && et.width == 4:
		return float64(math.Float32frombits(uint32(bits)))
	case et.isFloat && et.width == 8:
		return math.Float64frombits(bits)
	case et.unsigned:
		return float64(bits)
	default:
		// Sign-extend from the chunk's bit width.
		shift := 64 - uint(len(chunk)*8)
		return float64(int64(bits<<shift) >> shift)
	}
}

// encodeBuffer writes vals back into data using et's native width,
// truncating to data's capacity.
func encodeBuffer(vals []float64, data []byte, et elemType) error {
	w := et.width
	if w == 0 {
		return fmt.Errorf("zero-width element type")
	}
	n := len(data) / w
	if n > len(vals) {
		n = len(vals)
	}
	for i := 0; i < n; i++ {
		var bits uint64
		switch {
		case et.isFloat && w == 4:
			bits = uint64(math.Float32bits(float32(vals[i])))
		case et.isFloat && w == 8:
			bits = math.Float64bits(vals[i])
		case et.unsigned:
			bits = uint64(vals[i])
		default:
			bits = uint64(int64(vals[i]))
		}
		for b := 0; b < w; b++ {
			data[i*w+b] = byte(bits >> (8 * b))
		}
	}
	return nil
}
