package clgen

import (
	"fmt"
	"regexp"
	"strings"
)

// KernelPrototype is the parsed argument-list descriptor for a single
// kernel function (§3). Parsing prototypes from arbitrary source text is,
// beyond this minimal contract, out of scope (§1); this extracts just
// enough to drive payload synthesis and argument binding, grounded in the
// original CLgen clutil.py test fixtures (extract_prototype /
// strip_attributes / KernelPrototype.from_source).
type KernelPrototype struct {
	Name string
	Args []*KernelArg
}

var attributeRe = regexp.MustCompile(`__attribute__\s*\(\([^()]*(?:\([^()]*\)[^()]*)*\)\)`)

// stripAttributes removes __attribute__((...)) qualifiers from source
// text, leaving the surrounding whitespace in place.
func stripAttributes(src string) string {
	return attributeRe.ReplaceAllString(src, "")
}

var kernelHeaderRe = regexp.MustCompile(`__kernel\s+void\s+([A-Za-z_]\w*)\s*\(([^)]*)\)\s*\{`)

// ParseKernelPrototype extracts the single kernel prototype from source
// (§4.5 construction step: "Parse the prototype from source text").
// Returns an error if the source does not contain exactly one __kernel
// function header or an argument fails to parse; NewKernelDriver reports
// such an error as ErrUglyCode.
func ParseKernelPrototype(source string) (*KernelPrototype, error) {
	clean := stripAttributes(source)
	matches := kernelHeaderRe.FindAllStringSubmatchIndex(clean, -1)
	if len(matches) != 1 {
		return nil, fmt.Errorf("clgen: expected exactly one __kernel function, found %d", len(matches))
	}
	m := matches[0]
	name := clean[m[2]:m[3]]
	argList := clean[m[4]:m[5]]

	proto := &KernelPrototype{Name: name}
	for _, rawArg := range splitArgList(argList) {
		rawArg = strings.TrimSpace(rawArg)
		if rawArg == "" {
			continue
		}
		arg, err := ParseKernelArg(rawArg)
		if err != nil {
			return nil, err
		}
		proto.Args = append(proto.Args, arg)
	}
	return proto, nil
}

// splitArgList splits a comma-separated argument list, tolerant of the
// newlines/indentation CL kernel prototypes are often wrapped across.
func splitArgList(argList string) []string {
	normalized := strings.Join(strings.Fields(argList), " ")
	if strings.TrimSpace(normalized) == "" {
		return nil
	}
	return strings.Split(normalized, ",")
}

// HasNonConstArg reports whether any argument lacks the const qualifier,
// used by Validator step 7 (§4.5) to decide whether input-insensitivity
// is even checkable.
func (p *KernelPrototype) HasNonConstArg() bool {
	for _, a := range p.Args {
		if !a.IsConst {
			return true
		}
	}
	return false
}
