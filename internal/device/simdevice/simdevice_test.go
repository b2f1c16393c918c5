package simdevice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clgen/internal/device"
)

func TestCompiler_Build_NoKernel(t *testing.T) {
	ctx := NewContext(device.TypeGPU)
	c := NewCompiler()
	_, err := c.Build(ctx, "int main() { return 0; }")
	assert.Error(t, err)
}

func TestCompiler_Build_UnbalancedBraces(t *testing.T) {
	ctx := NewContext(device.TypeGPU)
	c := NewCompiler()
	_, err := c.Build(ctx, "__kernel void f(__global int* a) { a[0] += 1;")
	assert.Error(t, err)
}

func TestCompiler_Build_AndLaunch(t *testing.T) {
	ctx := NewContext(device.TypeGPU)
	c := NewCompiler()
	program, err := c.Build(ctx, `__kernel void inc(__global int* a, const int n) {
  int i = get_global_id(0);
  a[i] += n;
}`)
	require.NoError(t, err)

	kernels, err := program.Kernels()
	require.NoError(t, err)
	require.Len(t, kernels, 1)
	k := kernels[0]
	assert.Equal(t, "inc", k.FunctionName())

	data := make([]byte, 4*4)
	for i := 0; i < 4; i++ {
		data[i*4] = byte(i)
	}
	aBuf, err := ctx.CreateBuffer(device.MemReadWrite, data)
	require.NoError(t, err)
	nBuf, err := ctx.CreateScalar(float64(10))
	require.NoError(t, err)

	require.NoError(t, k.SetArg(0, aBuf))
	require.NoError(t, k.SetArg(1, nBuf))

	queue, err := NewCommandQueue(ctx)
	require.NoError(t, err)
	ev, err := queue.EnqueueNDRangeKernel(k, 4, 4)
	require.NoError(t, err)
	_, err = ev.Elapsed()
	require.NoError(t, err)

	out := make([]byte, len(data))
	_, err = queue.EnqueueReadBuffer(aBuf, out)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.Equal(t, byte(i+10), out[i*4])
	}
}

func TestLaunch_UnboundArgumentFails(t *testing.T) {
	ctx := NewContext(device.TypeGPU)
	c := NewCompiler()
	program, err := c.Build(ctx, `__kernel void f(__global int* a) { a[get_global_id(0)] += 1; }`)
	require.NoError(t, err)
	kernels, _ := program.Kernels()
	queue, _ := NewCommandQueue(ctx)

	ev, err := queue.EnqueueNDRangeKernel(kernels[0], 1, 1)
	require.NoError(t, err) // EnqueueNDRangeKernel itself never fails synchronously...

	_, err = ev.Elapsed()
	assert.Error(t, err) // ...the launch error surfaces through the Event.
}

func TestParseElemType(t *testing.T) {
	tests := []struct {
		in        string
		wantWidth int
		wantFloat bool
		wantOK    bool
	}{
		{"int", 4, false, true},
		{"float", 4, true, true},
		{"uchar16", 1, false, true},
		{"int32", 4, false, true},
		{"widget", 0, false, false},
	}
	for _, tt := range tests {
		et, ok := parseElemType(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		if ok {
			assert.Equal(t, tt.wantWidth, et.width, tt.in)
			assert.Equal(t, tt.wantFloat, et.isFloat, tt.in)
		}
	}
}
