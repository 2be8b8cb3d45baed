package main

import (
	"math/rand"
	"strings"
	"testing"
)

func TestClassifyDivergenceLevels(t *testing.T) {
	rng := rand.New(rand.NewSource(40))
	tx := NewTaxonomy(rng)

	rootID := tx.Classify(TypeHerbivore, "", 0, 0)
	root, ok := tx.Get(rootID)
	if !ok {
		t.Fatal("root taxonomy not stored")
	}

	cases := []struct {
		mutations    int
		significance float64
		divergesAt   TaxonomicRank
	}{
		{12, 0.9, RankPhylum},
		{9, 0.75, RankClass},
		{7, 0.65, RankOrder},
		{5, 0.55, RankFamily},
		{3, 0.4, RankGenus},
		{1, 0.1, RankSpecies},
	}

	for _, c := range cases {
		childID := tx.Classify(TypeHerbivore, rootID, c.mutations, c.significance)
		child, ok := tx.Get(childID)
		if !ok {
			t.Fatalf("child taxonomy not stored for %+v", c)
		}
		// Ranks above the divergence level are copied from the parent.
		for rank := RankPhylum; rank < c.divergesAt; rank++ {
			if child.Ranks[rank] != root.Ranks[rank] {
				t.Errorf("mutations=%d: rank %s not inherited (%q vs %q)",
					c.mutations, rank, child.Ranks[rank], root.Ranks[rank])
			}
		}
	}

	// A species-level divergence inherits the genus.
	childID := tx.Classify(TypeHerbivore, rootID, 1, 0.1)
	child, _ := tx.Get(childID)
	if child.Ranks[RankGenus] != root.Ranks[RankGenus] {
		t.Errorf("species-level divergence changed the genus: %q vs %q",
			child.Ranks[RankGenus], root.Ranks[RankGenus])
	}
	if child.Ranks[RankSpecies] == root.Ranks[RankSpecies] {
		// Different species names are overwhelmingly likely but not
		// guaranteed by the tables; tolerate equality only if another draw
		// differs.
		second, _ := tx.Get(tx.Classify(TypeHerbivore, rootID, 1, 0.1))
		if second.Ranks[RankSpecies] == root.Ranks[RankSpecies] {
			t.Log("species epithet collided twice; name tables may be too small")
		}
	}
}

func TestScientificNameFormat(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	tx := NewTaxonomy(rng)
	id := tx.Classify(TypeCarnivore, "", 0, 0)
	record, _ := tx.Get(id)

	name := record.ScientificName()
	parts := strings.Split(name, " ")
	if len(parts) != 2 {
		t.Fatalf("scientific name not binomial: %q", name)
	}
	if parts[0][0] < 'A' || parts[0][0] > 'Z' {
		t.Errorf("genus not capitalized: %q", parts[0])
	}
	if strings.ToLower(parts[1]) != parts[1] {
		t.Errorf("species epithet not lowercase: %q", parts[1])
	}
}

func TestClassifyFixedDomainsPerType(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tx := NewTaxonomy(rng)

	unicellular, _ := tx.Get(tx.Classify(TypeUnicellular, "", 0, 0))
	plant, _ := tx.Get(tx.Classify(TypePlant, "", 0, 0))
	animal, _ := tx.Get(tx.Classify(TypeOmnivore, "", 0, 0))

	if unicellular.Ranks[RankKingdom] != "Monera" {
		t.Errorf("unicellular kingdom: %q", unicellular.Ranks[RankKingdom])
	}
	if plant.Ranks[RankKingdom] != "Plantae" {
		t.Errorf("plant kingdom: %q", plant.Ranks[RankKingdom])
	}
	if animal.Ranks[RankKingdom] != "Animalia" {
		t.Errorf("omnivore kingdom: %q", animal.Ranks[RankKingdom])
	}
}

func TestClassifyUnknownParentSynthesizesAllRanks(t *testing.T) {
	rng := rand.New(rand.NewSource(43))
	tx := NewTaxonomy(rng)
	id := tx.Classify(TypePlant, "no-such-parent", 3, 0.4)
	record, _ := tx.Get(id)
	for rank := RankDomain; rank < rankCount; rank++ {
		if record.Ranks[rank] == "" {
			t.Errorf("rank %s empty with unknown parent", rank)
		}
	}
}
