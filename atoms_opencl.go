package clgen

// openCLAtoms is the bundled multi-character atom set for GreedyAtomizer
// seeding: OpenCL/C99 keywords, built-in identifiers, preprocessor
// directives and comment delimiters, taken verbatim from the original
// CLgen vocabulary (bag-of-words analysis of a GitHub corpus, plus the
// C99/OpenCL 1.2 spec). "into" is not a CL keyword; it is a corpus-derived
// artifact and is kept for bit-for-bit compatibility with existing
// vocabularies (§9).
var openCLAtoms = []string{
	"  ",
	"__assert",
	"__attribute",
	"__builtin_astype",
	"__clc_fabs",
	"__clc_fma",
	"__constant",
	"__global",
	"__inline",
	"__kernel",
	"__local",
	"__private",
	"__read_only",
	"__read_write",
	"__write_only",
	"*/",
	"/*",
	"//",
	"abs",
	"alignas",
	"alignof",
	"atomic_add",
	"auto",
	"barrier",
	"bool",
	"break",
	"case",
	"char",
	"clamp",
	"complex",
	"const",
	"constant",
	"continue",
	"default",
	"define",
	"defined",
	"do",
	"double",
	"elif",
	"else",
	"endif",
	"enum",
	"error",
	"event_t",
	"extern",
	"fabs",
	"false",
	"float",
	"for",
	"get_global_id",
	"get_global_size",
	"get_local_id",
	"get_local_size",
	"get_num_groups",
	"global",
	"goto",
	"half",
	"if",
	"ifdef",
	"ifndef",
	"image1d_array_t",
	"image1d_buffer_t",
	"image1d_t",
	"image2d_array_t",
	"image2d_t",
	"image3d_t",
	"imaginary",
	"include",
	"inline",
	"int",
	"into",
	"kernel",
	"line",
	"local",
	"long",
	"noreturn",
	"pragma",
	"private",
	"quad",
	"read_only",
	"read_write",
	"register",
	"restrict",
	"return",
	"sampler_t",
	"short",
	"shuffle",
	"signed",
	"size_t",
	"sizeof",
	"sqrt",
	"static",
	"struct",
	"switch",
	"true",
	"typedef",
	"u32",
	"uchar",
	"uint",
	"ulong",
	"undef",
	"union",
	"unsigned",
	"void",
	"volatile",
	"while",
	"wide",
	"write_only",
}

// printableASCII is every printable ASCII character (string.printable's
// non-whitespace-collapsed analogue), unioned into the seeded atom set as
// single-character atoms.
const printableASCII = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~ \t\n\r\v\f"

// seededOpenCLAtomSet returns the full seeded atom set: the bundled
// multi-character atoms unioned with every printable ASCII character,
// deduplicated. It is the seed vocabulary a GreedyAtomizer is constructed
// with before retokenizing a corpus (§3, §4.3).
func seededOpenCLAtomSet() []string {
	seen := make(map[string]struct{}, len(openCLAtoms)+len(printableASCII))
	atoms := make([]string, 0, len(openCLAtoms)+len(printableASCII))
	add := func(a string) {
		if _, ok := seen[a]; ok {
			return
		}
		seen[a] = struct{}{}
		atoms = append(atoms, a)
	}
	for _, a := range openCLAtoms {
		add(a)
	}
	for _, r := range printableASCII {
		add(string(r))
	}
	return atoms
}
