package clgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kernelSourceA = `
__kernel void A(__global float* a,    __global float* b, const int c) {
    int d = get_global_id(0);

    if (d < c) {
        a[d] += 1;
    }
}
`

const kernelSourceAB = `
__kernel void AB(__global float* a, __global float* b, __local int* c) {
    int d = get_global_id(0);

    for (int i = 0; i < d * 1000; ++i)
        a[d] += 1;
}
`

const kernelSourceC = `
__kernel void C(__global int* a, __global int* b,

                const int c, const int d) {
    int e = get_global_id(0);
    a[e] = b[e] + c * d;
}
`

func TestParseKernelPrototype(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		wantName    string
		wantNames   []string
		wantGlobals []bool
		wantLocals  []bool
	}{
		{
			name:        "two global pointers and a const scalar",
			source:      kernelSourceA,
			wantName:    "A",
			wantNames:   []string{"a", "b", "c"},
			wantGlobals: []bool{true, true, false},
			wantLocals:  []bool{false, false, false},
		},
		{
			name:        "local pointer argument",
			source:      kernelSourceAB,
			wantName:    "AB",
			wantNames:   []string{"a", "b", "c"},
			wantGlobals: []bool{true, true, false},
			wantLocals:  []bool{false, false, true},
		},
		{
			name:        "argument list wrapped across lines",
			source:      kernelSourceC,
			wantName:    "C",
			wantNames:   []string{"a", "b", "c", "d"},
			wantGlobals: []bool{true, true, false, false},
			wantLocals:  []bool{false, false, false, false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proto, err := ParseKernelPrototype(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, proto.Name)

			var names []string
			var globals []bool
			var locals []bool
			for _, a := range proto.Args {
				names = append(names, a.Name)
				globals = append(globals, a.IsGlobal)
				locals = append(locals, a.IsLocal)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantGlobals, globals)
			assert.Equal(t, tt.wantLocals, locals)
		})
	}
}

func TestParseKernelPrototype_NoKernel(t *testing.T) {
	_, err := ParseKernelPrototype("int main() { return 0; }")
	assert.Error(t, err)
}

func TestParseKernelPrototype_MultipleKernels(t *testing.T) {
	src := kernelSourceA + kernelSourceAB
	_, err := ParseKernelPrototype(src)
	assert.Error(t, err)
}

func TestParseKernelPrototype_StripsAttributes(t *testing.T) {
	src := `__kernel void f(__global int* a) __attribute__((reqd_work_group_size(64,1,1))) {
    a[0] += 1;
}`
	proto, err := ParseKernelPrototype(src)
	require.NoError(t, err)
	assert.Equal(t, "f", proto.Name)
}

func TestKernelPrototype_HasNonConstArg(t *testing.T) {
	proto, err := ParseKernelPrototype(kernelSourceA)
	require.NoError(t, err)
	assert.True(t, proto.HasNonConstArg())

	onlyConst, err := ParseKernelPrototype(
		"__kernel void g(const int n) { int x = n; }")
	require.NoError(t, err)
	assert.False(t, onlyConst.HasNonConstArg())
}
