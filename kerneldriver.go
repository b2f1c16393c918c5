package clgen

import (
	"github.com/google/uuid"

	"clgen/internal/device"
)

// KernelDriver drives a single compiled OpenCL-style kernel: one source
// string compiles to exactly one kernel function, which can then be run,
// validated and profiled repeatedly against the same Context (§5).
// Grounded in cldrive.py's KernelDriver.
type KernelDriver struct {
	ctx       device.Context
	source    string
	prototype *KernelPrototype
	kernel    device.Kernel
	name      string
	runID     uuid.UUID

	wgsizes   []int
	transfers []int
	runtimes  []float64
}

// NewKernelDriver compiles source against ctx using compiler and caches
// the single resulting kernel (§4.5 construction). cfg may be nil, in
// which case NewConfig's defaults apply.
//
// Construction fails with ErrOpenCLDeviceNotFound if ctx's device does
// not match cfg's configured driver.device_type, ErrBadCode if
// compilation fails, or ErrUglyCode if the source does not contain
// exactly one kernel function. Per cfg's driver.fatal_errors (§6,
// grounded in cldrive.py's kernel()/file(), which re-raise construction
// errors when fatal_errors is set instead of logging and moving on to
// the next kernel in a batch), a true value turns any such construction
// failure into a panic rather than a returned error.
func NewKernelDriver(ctx device.Context, compiler device.Compiler, source string, cfg *Config) (*KernelDriver, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	fatal := cfg.GetBool("driver.fatal_errors")

	fail := func(err error) (*KernelDriver, error) {
		if fatal {
			panic(err)
		}
		return nil, err
	}

	wantType, ok := device.ParseType(cfg.GetString("driver.device_type"))
	if !ok {
		return fail(ErrOpenCLNotSupported())
	}
	if ctx.DeviceID().Type() != wantType {
		return fail(ErrOpenCLDeviceNotFound(wantType.String()))
	}

	program, err := compiler.Build(ctx, source)
	if err != nil {
		return fail(ErrBadCode(err))
	}

	kernels, err := program.Kernels()
	if err != nil || len(kernels) != 1 {
		return fail(ErrUglyCode(err))
	}

	prototype, err := ParseKernelPrototype(source)
	if err != nil {
		return fail(ErrUglyCode(err))
	}

	return &KernelDriver{
		ctx:       ctx,
		source:    source,
		prototype: prototype,
		kernel:    kernels[0],
		name:      kernels[0].FunctionName(),
		runID:     uuid.New(),
	}, nil
}

// Context returns the compute Context this driver was built against.
func (d *KernelDriver) Context() device.Context { return d.ctx }

// Source returns the original kernel source text.
func (d *KernelDriver) Source() string { return d.source }

// Prototype returns the parsed kernel argument descriptor.
func (d *KernelDriver) Prototype() *KernelPrototype { return d.prototype }

// Name returns the compiled kernel's function name.
func (d *KernelDriver) Name() string { return d.name }

// RunID identifies this driver instance, for correlating validator and
// profiler log lines across repeated runs of the same compiled kernel in
// a batch (not part of the original driver's public surface; see
// SPEC_FULL.md's domain stack notes).
func (d *KernelDriver) RunID() uuid.UUID { return d.runID }

func (d *KernelDriver) String() string { return d.name + "@" + d.runID.String() }

// Wgsizes returns the recorded workgroup sizes from every prior Run.
func (d *KernelDriver) Wgsizes() []int { return d.wgsizes }

// Transfers returns the recorded transfer sizes, in bytes, from every
// prior Run.
func (d *KernelDriver) Transfers() []int { return d.transfers }

// Runtimes returns the recorded end-to-end runtimes, in milliseconds,
// from every prior Run.
func (d *KernelDriver) Runtimes() []float64 { return d.runtimes }

// Run executes the kernel once against queue with the given input
// payload: flush, deep-copy the payload, transfer host to device, bind
// arguments, launch with a workgroup size of min(ndrange, 256), wait,
// transfer device to host, flush, and record the resulting workgroup
// size/transfer size/runtime (§5 __call__).
func (d *KernelDriver) Run(queue device.CommandQueue, payload *KernelPayload) (*KernelPayload, error) {
	if err := queue.Flush(); err != nil {
		return nil, ErrBadDriver(err)
	}

	output, err := payload.Clone()
	if err != nil {
		return nil, err
	}

	var elapsedMs float64

	h2d, err := output.HostToDevice(queue)
	if err != nil {
		return nil, err
	}
	elapsedMs += h2d

	kargs := output.Kargs()
	for i, buf := range kargs {
		if err := d.kernel.SetArg(i, buf); err != nil {
			return nil, ErrBadArgs(err)
		}
	}

	localSize := output.NDRange()
	if localSize > 256 {
		localSize = 256
	}

	ev, err := queue.EnqueueNDRangeKernel(d.kernel, output.NDRange(), localSize)
	if err != nil {
		return nil, ErrBadArgs(err)
	}
	execDur, err := ev.Elapsed()
	if err != nil {
		return nil, ErrBadProfile(err)
	}
	elapsedMs += float64(execDur.Microseconds()) / 1000.0

	d2h, err := output.DeviceToHost(queue)
	if err != nil {
		return nil, err
	}
	elapsedMs += d2h

	d.wgsizes = append(d.wgsizes, localSize)
	d.runtimes = append(d.runtimes, elapsedMs)
	d.transfers = append(d.transfers, payload.TransferSize())

	if err := queue.Flush(); err != nil {
		return nil, ErrBadDriver(err)
	}

	return output, nil
}
