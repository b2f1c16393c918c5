package clgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKernelArg(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantType   string
		wantBare   string
		wantWidth  int
		wantNumpy  NumericType
		isPointer  bool
		isGlobal   bool
		isLocal    bool
		isConst    bool
	}{
		{
			name:      "global float pointer",
			text:      "__global float* a",
			wantType:  "float*",
			wantBare:  "float",
			wantWidth: 1,
			wantNumpy: TypeFloat32,
			isPointer: true,
			isGlobal:  true,
		},
		{
			name:      "global float4 vector pointer",
			text:      "__global float4* a",
			wantType:  "float4*",
			wantBare:  "float",
			wantWidth: 4,
			wantNumpy: TypeFloat32,
			isPointer: true,
			isGlobal:  true,
		},
		{
			name:      "const unsigned int scalar",
			text:      "const unsigned int z",
			wantType:  "unsigned int",
			wantBare:  "unsigned int",
			wantWidth: 1,
			wantNumpy: TypeUint32,
			isConst:   true,
		},
		{
			name:      "const uchar16 vector scalar",
			text:      "const uchar16 z",
			wantType:  "uchar16",
			wantBare:  "uchar",
			wantWidth: 16,
			wantNumpy: TypeUint8,
			isConst:   true,
		},
		{
			name:      "const int32 scalar",
			text:      "const int32 b",
			wantType:  "int32",
			wantBare:  "int",
			wantWidth: 32,
			wantNumpy: TypeInt32,
			isConst:   true,
		},
		{
			name:      "local int pointer",
			text:      "__local int* c",
			wantType:  "int*",
			wantBare:  "int",
			wantWidth: 1,
			wantNumpy: TypeInt32,
			isPointer: true,
			isLocal:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arg, err := ParseKernelArg(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, arg.Type)
			assert.Equal(t, tt.wantBare, arg.BareType)
			assert.Equal(t, tt.wantWidth, arg.Width)
			assert.Equal(t, tt.wantNumpy, arg.NumpyType)
			assert.Equal(t, tt.isPointer, arg.IsPointer)
			assert.Equal(t, tt.isGlobal, arg.IsGlobal)
			assert.Equal(t, tt.isLocal, arg.IsLocal)
			assert.Equal(t, tt.isConst, arg.IsConst)
		})
	}
}

func TestParseKernelArg_NameAndText(t *testing.T) {
	arg, err := ParseKernelArg("__global float4* a")
	require.NoError(t, err)
	assert.Equal(t, "a", arg.Name)
	assert.Equal(t, "__global float4* a", arg.Text)

	arg, err = ParseKernelArg("const int b")
	require.NoError(t, err)
	assert.Equal(t, "b", arg.Name)
}

func TestParseKernelArg_Restrict(t *testing.T) {
	arg, err := ParseKernelArg("const restrict int b")
	require.NoError(t, err)
	assert.True(t, arg.IsRestrict)
	assert.True(t, arg.IsConst)
}

func TestParseKernelArg_MalformedText(t *testing.T) {
	_, err := ParseKernelArg("a")
	assert.Error(t, err)
}

func TestParseKernelArg_UnsupportedType(t *testing.T) {
	_, err := ParseKernelArg("__global widget* a")
	assert.Error(t, err)
}

func TestNumericType_ByteWidth(t *testing.T) {
	assert.Equal(t, 1, TypeInt8.byteWidth())
	assert.Equal(t, 4, TypeFloat32.byteWidth())
	assert.Equal(t, 8, TypeFloat64.byteWidth())
}
