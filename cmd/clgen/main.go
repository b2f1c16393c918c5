// Command clgen is a thin illustrative CLI over the atomizer: it reads a
// source file, round-trips it through the requested atomizer kind, and
// reports whether the round trip was lossless. Production CLI surfaces
// for driving kernels are out of scope (see SPEC_FULL.md); this exists
// only to exercise the library from the command line the way the
// teacher's own cmd/main.go exercises its grammar compiler.
package main

import (
	"flag"
	"log"
	"os"

	"clgen"
)

func main() {
	var (
		sourcePath = flag.String("source", "", "Path to the source file to atomize")
		kind       = flag.String("atomizer", "greedy", "Atomizer kind: \"char\" or \"greedy\"")
	)
	flag.Parse()

	if *sourcePath == "" {
		log.Fatal("Source file not informed")
	}

	data, err := os.ReadFile(*sourcePath)
	if err != nil {
		log.Fatalf("Can't read source file: %s", err.Error())
	}
	text := string(data)

	var atomizer clgen.Atomizer
	switch *kind {
	case "char":
		atomizer = clgen.CharacterAtomizerFromText(text)
	case "greedy":
		atomizer, err = clgen.GreedyAtomizerFromText(text)
		if err != nil {
			log.Fatalf("Can't build greedy atomizer: %s", err.Error())
		}
	default:
		log.Fatalf("Atomizer kind %q not supported", *kind)
	}

	indices, err := atomizer.Atomize(text)
	if err != nil {
		log.Fatalf("Can't atomize source: %s", err.Error())
	}
	log.Printf("vocab size: %d, atoms: %d", atomizer.VocabSize(), len(indices))

	roundTripped, err := atomizer.Deatomize(indices)
	if err != nil {
		log.Fatalf("Can't deatomize indices: %s", err.Error())
	}

	if roundTripped == text {
		log.Print("round trip: lossless")
	} else {
		log.Fatal("round trip: LOSSY")
	}
}
