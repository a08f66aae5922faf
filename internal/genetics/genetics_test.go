package genetics

import (
	"errors"
	"math/bits"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"innit/internal/action"
)

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func sortedActions(actions []action.Action) []action.Action {
	out := append([]action.Action(nil), actions...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Identifier() < out[j].Identifier()
	})
	return out
}

func TestFromTraitNamesMoveRoundTrip(t *testing.T) {
	c := DefaultCatalog()
	raw, err := c.FromTraitNames([]string{"Move"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(raw) != WindowWidth {
		t.Fatalf("unexpected genome length: %d", len(raw))
	}

	phenotype, dna, err := c.Express(raw, Rna)
	if err != nil {
		t.Fatalf("express: %v", err)
	}
	if len(dna.Decoded) != 1 {
		t.Fatalf("unexpected decoded length: %d", len(dna.Decoded))
	}
	gene := dna.Decoded[0]
	if gene.Family != Actuating || gene.Name != "Move" || gene.Position != 0 {
		t.Fatalf("unexpected decoded trait: %+v", gene)
	}
	if len(phenotype.Actuators.Actions) != 1 {
		t.Fatalf("unexpected actuator actions: %+v", phenotype.Actuators.Actions)
	}
	move := phenotype.Actuators.Actions[0]
	if move.Identifier() != "move" || move.Level != 1 {
		t.Fatalf("unexpected move action: %+v", move)
	}
}

func TestFromTraitNamesUnknownTrait(t *testing.T) {
	c := DefaultCatalog()
	_, err := c.FromTraitNames([]string{"Move", "Telekinesis"})
	var unknown *UnknownTraitError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTraitError, got %v", err)
	}
	if unknown.Name != "Telekinesis" {
		t.Fatalf("unexpected offending name: %q", unknown.Name)
	}
}

func TestDecodeUnknownSymbolIsJunk(t *testing.T) {
	c := DefaultCatalog()
	phenotype, dna, err := c.Express([]byte{0x00, 0x01, 0xFF}, Rna)
	if err != nil {
		t.Fatalf("express: %v", err)
	}
	want := []GeneticTrait{{Family: Junk, Position: 0, Symbol: 0xFF}}
	if diff := cmp.Diff(want, dna.Decoded); diff != "" {
		t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Phenotype{}, phenotype); diff != "" {
		t.Fatalf("junk should leave the phenotype at defaults (-want +got):\n%s", diff)
	}
}

func TestDecodeIgnoresMarkerLengthAndTrailingBytes(t *testing.T) {
	c := DefaultCatalog()
	move, _ := c.SymbolFor("Move")
	raw := []byte{0xAB, 0x07, move, 0x00, 0x01, 0x01, 0x42, 0x00}
	decoded := c.Decode(raw)
	if len(decoded) != 2 {
		t.Fatalf("unexpected decoded length: %d", len(decoded))
	}
	if decoded[0].Name != "Move" || decoded[1].Name != "Optical Sensor" || decoded[1].Position != 1 {
		t.Fatalf("unexpected decoded stream: %v", decoded)
	}
}

func TestDecodeShortInputYieldsNothing(t *testing.T) {
	c := DefaultCatalog()
	for _, raw := range [][]byte{nil, {0x00}, {0x00, 0x01}} {
		if decoded := c.Decode(raw); len(decoded) != 0 {
			t.Fatalf("expected no traits for %v, got %v", raw, decoded)
		}
	}
}

func TestDecodeTotality(t *testing.T) {
	c := DefaultCatalog()
	inputs := [][]byte{
		make([]byte, 64),
		{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	}
	rng := newTestRand(7)
	for i := 0; i < 200; i++ {
		buf := make([]byte, rng.Intn(40))
		rng.Read(buf)
		inputs = append(inputs, buf)
	}
	for _, raw := range inputs {
		decoded := c.Decode(raw)
		if len(decoded) != len(raw)/WindowWidth {
			t.Fatalf("unexpected window count for len=%d: %d", len(raw), len(decoded))
		}
		for _, dnaType := range []DnaType{Nucleus, Nucleoid, Rna, Plasmid} {
			if len(raw) == 0 {
				continue
			}
			if _, _, err := c.Express(raw, dnaType); err != nil {
				t.Fatalf("express %v: %v", raw, err)
			}
		}
	}
}

func FuzzDecode(f *testing.F) {
	c := DefaultCatalog()
	f.Add([]byte{0x00, 0x01, 0xFF})
	f.Add([]byte{0x00, 0x01, 0x04, 0x00})
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, raw []byte) {
		decoded := c.Decode(raw)
		if len(decoded) != len(raw)/WindowWidth {
			t.Fatalf("unexpected window count: %d", len(decoded))
		}
		reencoded := c.Encode(decoded)
		if diff := cmp.Diff(decoded, c.Decode(reencoded)); diff != "" {
			t.Fatalf("re-encoding changed the trait stream:\n%s", diff)
		}
	})
}

func TestExpressEmptyGenome(t *testing.T) {
	c := DefaultCatalog()
	if _, _, err := c.Express(nil, Nucleus); !errors.Is(err, ErrEmptyGenome) {
		t.Fatalf("expected ErrEmptyGenome, got %v", err)
	}
}

func TestOccurrenceScaling(t *testing.T) {
	c := DefaultCatalog()
	raw, err := c.FromTraitNames([]string{
		"Optical Sensor", "Move", "Optical Sensor", "Cell Membrane",
		"Optical Sensor", "Move", "Energy Store", "Energy Store",
		"Life Expectancy", "Cytoplasm", "Metabolism",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	p, _, err := c.Express(raw, Plasmid)
	if err != nil {
		t.Fatalf("express: %v", err)
	}
	if p.Sensors.SensingRange != 3 {
		t.Fatalf("sensing range: got=%d want=3", p.Sensors.SensingRange)
	}
	if p.Actuators.MaxHp != 1 || p.Actuators.Hp != 1 {
		t.Fatalf("hp: got=%d/%d want=1/1", p.Actuators.Hp, p.Actuators.MaxHp)
	}
	if p.Processors.EnergyStorage != 2 || p.Processors.Energy != 2 {
		t.Fatalf("energy: got=%d/%d want=2/2", p.Processors.Energy, p.Processors.EnergyStorage)
	}
	if p.Processors.LifeExpectancy != 1 || p.Processors.Metabolism != 1 || p.Actuators.Volume != 1 {
		t.Fatalf("unexpected processors/actuators: %+v %+v", p.Processors, p.Actuators)
	}
	move, ok := p.ActionNamed("move")
	if !ok || move.Level != 2 {
		t.Fatalf("move level: got=%+v want level 2", move)
	}
}

func TestReceptorTypeFollowsGenePosition(t *testing.T) {
	c := DefaultCatalog()
	raw, err := c.FromTraitNames([]string{"Move", "Receptor", "Cell Membrane", "Receptor"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	p, _, err := c.Express(raw, Nucleus)
	if err != nil {
		t.Fatalf("express: %v", err)
	}
	want := []Receptor{{TypeID: 1}, {TypeID: 3}}
	if diff := cmp.Diff(want, p.Processors.Receptors); diff != "" {
		t.Fatalf("receptors mismatch (-want +got):\n%s", diff)
	}
}

func TestPickUpItemOnlyForCells(t *testing.T) {
	c := DefaultCatalog()
	raw, err := c.FromTraitNames([]string{"Optical Sensor"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for dnaType, want := range map[DnaType]bool{Nucleus: true, Nucleoid: true, Rna: false, Plasmid: false} {
		p, _, err := c.Express(raw, dnaType)
		if err != nil {
			t.Fatalf("express: %v", err)
		}
		_, got := p.ActionNamed("pick up item")
		if got != want {
			t.Fatalf("%s: pick up present=%v want=%v", dnaType, got, want)
		}
	}
}

func TestLTRAndJunkDoNotContribute(t *testing.T) {
	c := DefaultCatalog()
	ltr, _ := c.SymbolFor("LTR marker")
	raw := []byte{0x00, 0x01, ltr, 0x00, 0x01, 0xEE, 0x00, 0x01, ltr}
	p, dna, err := c.Express(raw, Rna)
	if err != nil {
		t.Fatalf("express: %v", err)
	}
	if len(dna.Decoded) != 3 {
		t.Fatalf("expected all windows recorded, got %v", dna.Decoded)
	}
	if diff := cmp.Diff(Phenotype{}, p); diff != "" {
		t.Fatalf("unexpected phenotype (-want +got):\n%s", diff)
	}
}

func TestGenerateAndExpressDeterministic(t *testing.T) {
	c := DefaultCatalog()
	p1, d1, err := c.GenerateAndExpress(newTestRand(42), Nucleus, true, 12)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	p2, d2, err := c.GenerateAndExpress(newTestRand(42), Nucleus, true, 12)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if diff := cmp.Diff(d1.Raw, d2.Raw); diff != "" {
		t.Fatalf("raw genomes differ:\n%s", diff)
	}
	for _, pair := range [][2][]action.Action{
		{p1.Sensors.Actions, p2.Sensors.Actions},
		{p1.Processors.Actions, p2.Processors.Actions},
		{p1.Actuators.Actions, p2.Actuators.Actions},
	} {
		if diff := cmp.Diff(sortedActions(pair[0]), sortedActions(pair[1])); diff != "" {
			t.Fatalf("actions differ:\n%s", diff)
		}
	}
	if diff := cmp.Diff(p1, p2); diff != "" {
		t.Fatalf("phenotypes differ:\n%s", diff)
	}
}

func TestRandomGenomeLengthAndFlanks(t *testing.T) {
	c := DefaultCatalog()
	ltr, _ := c.SymbolFor("LTR marker")

	plain := c.RandomGenome(newTestRand(1), false, 10)
	if len(plain) != 10*WindowWidth {
		t.Fatalf("unexpected plain length: %d", len(plain))
	}
	flanked := c.RandomGenome(newTestRand(1), true, 10)
	if len(flanked) != 12*WindowWidth {
		t.Fatalf("unexpected flanked length: %d", len(flanked))
	}
	if flanked[2] != ltr || flanked[len(flanked)-1] != ltr {
		t.Fatalf("expected LTR flanks, got %v", flanked)
	}
	for i := 0; i < len(plain); i += WindowWidth {
		if plain[i] != GeneMarker || plain[i+1] != GeneLength {
			t.Fatalf("window %d malformed: %v", i/WindowWidth, plain[i:i+WindowWidth])
		}
		if _, ok := c.TraitFor(plain[i+2]); !ok {
			t.Fatalf("window %d carries unknown symbol 0x%02x", i/WindowWidth, plain[i+2])
		}
	}
}

func TestDistributedGenomeRespectsFamilies(t *testing.T) {
	c := DefaultCatalog()
	raw, err := c.DistributedGenome(newTestRand(3), []uint8{0, 0, 5}, []Family{Sensing, Processing, Actuating}, false, 50)
	if err != nil {
		t.Fatalf("distributed: %v", err)
	}
	if len(raw) != 50*WindowWidth {
		t.Fatalf("unexpected length: %d", len(raw))
	}
	for _, trait := range c.Decode(raw) {
		if trait.Family != Actuating {
			t.Fatalf("unexpected family %s at %d", trait.Family, trait.Position)
		}
	}
}

func TestDistributedGenomeInvalidWeights(t *testing.T) {
	c := DefaultCatalog()
	families := []Family{Sensing, Processing, Actuating}
	cases := map[string]struct {
		weights  []uint8
		families []Family
	}{
		"empty":     {weights: nil, families: nil},
		"zero":      {weights: []uint8{0, 0, 0}, families: families},
		"mismatch":  {weights: []uint8{1, 2}, families: families},
		"no_traits": {weights: []uint8{1}, families: []Family{Junk}},
	}
	for name, tc := range cases {
		_, err := c.DistributedGenome(newTestRand(1), tc.weights, tc.families, false, 5)
		var invalid *InvalidDistributionError
		if !errors.As(err, &invalid) {
			t.Fatalf("%s: expected InvalidDistributionError, got %v", name, err)
		}
	}
}

func TestEncodeReproducesJunk(t *testing.T) {
	c := DefaultCatalog()
	raw := []byte{0x00, 0x01, 0xFF, 0x00, 0x01, 0x04, 0x00, 0x01, 0x30}
	if diff := cmp.Diff(raw, c.Encode(c.Decode(raw))); diff != "" {
		t.Fatalf("re-encoding mismatch (-want +got):\n%s", diff)
	}
}

func TestLTRSequence(t *testing.T) {
	c := DefaultCatalog()
	raw, err := c.FromTraitNames([]string{"Move", "LTR marker", "Attack", "Receptor", "LTR marker", "Cytoplasm"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	seq, ok := LTRSequence(c.Decode(raw))
	if !ok {
		t.Fatal("expected flanked sequence")
	}
	if len(seq) != 2 || seq[0].Name != "Attack" || seq[1].Name != "Receptor" {
		t.Fatalf("unexpected sequence: %v", seq)
	}

	single, err := c.FromTraitNames([]string{"LTR marker", "Move"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, ok := LTRSequence(c.Decode(single)); ok {
		t.Fatal("a single marker must not yield a sequence")
	}
}

func TestMutatePreservesLengthAndFlipsOneBit(t *testing.T) {
	c := DefaultCatalog()
	rng := newTestRand(99)
	for i := 0; i < 500; i++ {
		raw := c.RandomGenome(rng, rng.Intn(2) == 0, 1+rng.Intn(20))
		mutated, err := Mutate(raw, rng)
		if err != nil {
			t.Fatalf("mutate: %v", err)
		}
		if len(mutated) != len(raw) {
			t.Fatalf("length changed: got=%d want=%d", len(mutated), len(raw))
		}
		distance := 0
		for j := range raw {
			distance += bits.OnesCount8(raw[j] ^ mutated[j])
		}
		if distance != 1 {
			t.Fatalf("hamming distance: got=%d want=1", distance)
		}
	}
}

func TestMutateDoesNotTouchInput(t *testing.T) {
	raw := []byte{0x00, 0x01, 0x04}
	original := append([]byte(nil), raw...)
	if _, err := Mutate(raw, newTestRand(5)); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if diff := cmp.Diff(original, raw); diff != "" {
		t.Fatalf("input modified:\n%s", diff)
	}
}

func TestMutateNeverReachesTrailingBytes(t *testing.T) {
	rng := newTestRand(11)
	raw := []byte{0x00, 0x01, 0x04, 0xAA, 0xBB}
	for i := 0; i < 200; i++ {
		mutated, report, err := MutateWithReport(raw, rng)
		if err != nil {
			t.Fatalf("mutate: %v", err)
		}
		if report.Position >= WindowWidth || report.Gene != 0 {
			t.Fatalf("mutation outside the only whole window: %+v", report)
		}
		if mutated[3] != 0xAA || mutated[4] != 0xBB {
			t.Fatalf("trailing bytes changed: %v", mutated)
		}
	}
}

func TestMutateShortAndEmptyGenomes(t *testing.T) {
	if _, err := Mutate(nil, newTestRand(1)); !errors.Is(err, ErrEmptyGenome) {
		t.Fatalf("expected ErrEmptyGenome, got %v", err)
	}
	short := []byte{0x00, 0x01}
	mutated, err := Mutate(short, newTestRand(1))
	if err != nil {
		t.Fatalf("mutate short genome: %v", err)
	}
	if diff := cmp.Diff(short, mutated); diff != "" {
		t.Fatalf("short genome changed:\n%s", diff)
	}
}

func TestMutateDeterministic(t *testing.T) {
	raw := DefaultCatalog().RandomGenome(newTestRand(2), false, 8)
	a, err := Mutate(raw, newTestRand(77))
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	b, err := Mutate(raw, newTestRand(77))
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed produced different mutations:\n%s", diff)
	}
}

func TestWindow(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5}
	if diff := cmp.Diff([]byte{4, 5}, Window(raw, 1)); diff != "" {
		t.Fatalf("clipped window mismatch:\n%s", diff)
	}
	if Window(raw, 2) != nil || Window(raw, -1) != nil {
		t.Fatal("expected nil for out-of-range windows")
	}
}
