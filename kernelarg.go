package clgen

import (
	"fmt"
	"strconv"
	"strings"
)

// NumericType is the small enumerated element-type set kernel arguments
// are synthesized over (§9, "Dynamic typing of kernel args").
type NumericType int

const (
	TypeInt8 NumericType = iota
	TypeUint8
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64
	TypeFloat32
	TypeFloat64
)

// byteWidth returns the size, in bytes, of one scalar element of t.
func (t NumericType) byteWidth() int {
	switch t {
	case TypeInt8, TypeUint8:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32, TypeFloat32:
		return 4
	case TypeInt64, TypeUint64, TypeFloat64:
		return 8
	default:
		return 0
	}
}

func (t NumericType) String() string {
	switch t {
	case TypeInt8:
		return "i8"
	case TypeUint8:
		return "u8"
	case TypeInt16:
		return "i16"
	case TypeUint16:
		return "u16"
	case TypeInt32:
		return "i32"
	case TypeUint32:
		return "u32"
	case TypeInt64:
		return "i64"
	case TypeUint64:
		return "u64"
	case TypeFloat32:
		return "f32"
	case TypeFloat64:
		return "f64"
	default:
		return "?"
	}
}

// bareTypeToNumeric maps a CL bare scalar type name to its element enum,
// grounded in the original CLgen clutil numpy_type mapping
// (test_clutil.py's TestKernelArg cases: float -> f32, int -> i32,
// unsigned int -> u32, uchar -> u8, ...).
var bareTypeToNumeric = map[string]NumericType{
	"char":          TypeInt8,
	"uchar":         TypeUint8,
	"unsigned char": TypeUint8,
	"short":         TypeInt16,
	"ushort":        TypeUint16,
	"unsigned short": TypeUint16,
	"int":           TypeInt32,
	"uint":          TypeUint32,
	"unsigned int":  TypeUint32,
	"unsigned":      TypeUint32,
	"long":          TypeInt64,
	"ulong":         TypeUint64,
	"unsigned long": TypeUint64,
	"float":         TypeFloat32,
	"double":        TypeFloat64,
	"bool":          TypeInt8,
	"size_t":        TypeUint64,
}

// KernelArg is the per-argument descriptor consumed by KernelDriver and
// KernelPayload (§3). Parsing it out of kernel source text is, beyond the
// contract here, a separate concern (§1); the fields below are what a
// parser is expected to produce and what the payload/driver machinery
// consumes.
type KernelArg struct {
	Text       string // original argument text, e.g. "__global float4* a"
	Name       string
	Type       string // e.g. "float4*"
	BareType   string // e.g. "float"
	Width      int    // vector width W >= 1
	NumpyType  NumericType
	IsPointer  bool
	IsGlobal   bool
	IsLocal    bool
	IsConst    bool
	IsRestrict bool

	// Payload lifecycle fields, populated by KernelPayload construction.
	hasHost bool
	bufsize int // local pointers only: device scratch allocation size, bytes
}

// ParseKernelArg parses a single declarator from a kernel argument list,
// e.g. "__global float4* a" or "const int n". This is a minimal parser
// sufficient for the contract in §3 — grounded in the original CLgen
// clutil.py test suite (components/qualifiers/bare-type/vector-width
// splitting) — not a general C declarator parser.
func ParseKernelArg(text string) (*KernelArg, error) {
	trimmed := strings.TrimSpace(text)
	components := splitArgComponents(trimmed)
	if len(components) < 2 {
		return nil, fmt.Errorf("clgen: malformed kernel argument %q", text)
	}

	name := components[len(components)-1]
	typeComponents := components[:len(components)-1]

	var qualifiers []string
	var typeTokens []string
	for _, c := range typeComponents {
		switch c {
		case "__global", "global", "__local", "local", "__constant", "constant",
			"const", "__restrict", "restrict", "__private", "private":
			qualifiers = append(qualifiers, c)
		default:
			typeTokens = append(typeTokens, c)
		}
	}
	typ := strings.Join(typeTokens, " ")

	arg := &KernelArg{
		Text: trimmed,
		Name: name,
		Type: typ,
	}
	for _, q := range qualifiers {
		switch q {
		case "__global", "global":
			arg.IsGlobal = true
		case "__local", "local":
			arg.IsLocal = true
		case "const", "__constant", "constant":
			arg.IsConst = true
		case "__restrict", "restrict":
			arg.IsRestrict = true
		}
	}

	bareType, width, isPointer := splitVectorAndPointer(typ)
	arg.BareType = bareType
	arg.Width = width
	arg.IsPointer = isPointer
	// A bare pointer with no address-space qualifier defaults to global,
	// matching common OpenCL usage where __global is implied for pointer
	// kernel parameters declared without one.
	if isPointer && !arg.IsGlobal && !arg.IsLocal {
		arg.IsGlobal = true
	}

	numeric, ok := bareTypeToNumeric[bareType]
	if !ok {
		return nil, fmt.Errorf("clgen: unsupported element type %q in %q", bareType, text)
	}
	arg.NumpyType = numeric

	return arg, nil
}

// splitArgComponents splits an argument declaration into whitespace and
// pointer-aware components, e.g. "__global float4* a" -> ["__global",
// "float4*", "a"] (test_clutil.py's test_components).
func splitArgComponents(text string) []string {
	// Normalize "type * name" / "type *name" spacing around '*' so a
	// pointer star always binds to the preceding type token.
	normalized := strings.ReplaceAll(text, "*", "* ")
	fields := strings.Fields(normalized)

	var out []string
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if f == "*" && len(out) > 0 {
			out[len(out)-1] += "*"
			continue
		}
		out = append(out, strings.TrimSuffix(f, " "))
	}
	// Collapse a trailing lone "*" that attached to nothing (malformed
	// input) by leaving it as its own component; callers validate length.
	return out
}

// splitVectorAndPointer splits a type token like "float4*" into its bare
// element type, vector width and pointer-ness (test_clutil.py's
// test_vector_width / test_bare_type / test_is_pointer).
func splitVectorAndPointer(typ string) (bareType string, width int, isPointer bool) {
	t := typ
	if strings.HasSuffix(t, "*") {
		isPointer = true
		t = strings.TrimSuffix(t, "*")
	}
	width = 1
	bareType = t

	// Find a trailing run of digits that denotes vector width, but only
	// when what precedes it is a known bare type (so "int32" -> bare
	// "int", width 32 per clutil's test_vector_width, while "size_t"
	// stays intact with width 1).
	end := len(t)
	for end > 0 && t[end-1] >= '0' && t[end-1] <= '9' {
		end--
	}
	if end < len(t) && end > 0 {
		candidate := t[:end]
		if _, ok := bareTypeToNumeric[candidate]; ok {
			if n, err := strconv.Atoi(t[end:]); err == nil && n > 0 {
				bareType = candidate
				width = n
			}
		}
	}
	return bareType, width, isPointer
}
