package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// TaxonomicRank orders the classification levels from broadest to narrowest.
type TaxonomicRank int

const (
	RankDomain TaxonomicRank = iota
	RankKingdom
	RankPhylum
	RankClass
	RankOrder
	RankFamily
	RankGenus
	RankSpecies
	rankCount
)

func (r TaxonomicRank) String() string {
	switch r {
	case RankDomain:
		return "domain"
	case RankKingdom:
		return "kingdom"
	case RankPhylum:
		return "phylum"
	case RankClass:
		return "class"
	case RankOrder:
		return "order"
	case RankFamily:
		return "family"
	case RankGenus:
		return "genus"
	case RankSpecies:
		return "species"
	}
	return "unknown"
}

// TaxonomyRecord holds the full domain-to-species classification kept under a
// taxonomy ID.
type TaxonomyRecord struct {
	ID    string            `json:"id"`
	Type  OrganismType      `json:"type"`
	Ranks [rankCount]string `json:"ranks"`
}

// ScientificName renders the binomial "Genus species".
func (t TaxonomyRecord) ScientificName() string {
	return fmt.Sprintf("%s %s", strings.Title(t.Ranks[RankGenus]), strings.ToLower(t.Ranks[RankSpecies]))
}

// Taxonomy derives classifications for new species. Name generation is
// stateless; the record store only exists so parent ranks can be copied.
type Taxonomy struct {
	records map[string]TaxonomyRecord
	rng     *rand.Rand
}

// NewTaxonomy creates a taxonomy keyed store using the given RNG for name
// synthesis.
func NewTaxonomy(rng *rand.Rand) *Taxonomy {
	return &Taxonomy{
		records: make(map[string]TaxonomyRecord),
		rng:     rng,
	}
}

// Fixed kingdom/domain assignment per organism type.
var typeKingdoms = [organismTypeCount][2]string{
	TypeUnicellular: {"Bacteria", "Monera"},
	TypePlant:       {"Eukaryota", "Plantae"},
	TypeHerbivore:   {"Eukaryota", "Animalia"},
	TypeCarnivore:   {"Eukaryota", "Animalia"},
	TypeOmnivore:    {"Eukaryota", "Animalia"},
}

// Name fragments per organism type, combined prefix+suffix per rank.
var taxonPrefixes = [organismTypeCount][]string{
	TypeUnicellular: {"micro", "bacillo", "cocco", "spiro", "flagello", "cyano", "thermo", "halo"},
	TypePlant:       {"phyto", "dendro", "flori", "folia", "radic", "spermo", "bryo", "pterido"},
	TypeHerbivore:   {"herbi", "grami", "cervi", "lepori", "bovi", "capri", "equi", "rodenti"},
	TypeCarnivore:   {"carni", "preda", "feli", "lupi", "urso", "rapto", "dento", "venato"},
	TypeOmnivore:    {"omni", "vari", "primo", "susi", "corvi", "adapto", "mixo", "flexi"},
}

var taxonSuffixes = map[TaxonomicRank][]string{
	RankPhylum:  {"phyta", "zoa", "mycota", "chordata", "poda"},
	RankClass:   {"opsida", "idae", "ia", "ata", "ina"},
	RankOrder:   {"ales", "iformes", "odonta", "ptera", "ivora"},
	RankFamily:  {"aceae", "idae", "inae", "aria", "ensia"},
	RankGenus:   {"us", "a", "um", "is", "ix"},
	RankSpecies: {"ensis", "icus", "alis", "atus", "oides", "ella", "ianus"},
}

// Classify decides the divergence level from the mutation load and
// significance, copies the parent's ranks above that level, synthesizes fresh
// names at and below it, and stores the record under a new taxonomy ID.
func (tx *Taxonomy) Classify(t OrganismType, parentTaxonomyID string, mutations int, significance float64) string {
	divergence := RankSpecies
	switch {
	case mutations > 10 && significance > 0.8:
		divergence = RankPhylum
	case mutations > 8 && significance > 0.7:
		divergence = RankClass
	case mutations > 6 && significance > 0.6:
		divergence = RankOrder
	case mutations > 4 && significance > 0.5:
		divergence = RankFamily
	case mutations > 2 && significance > 0.3:
		divergence = RankGenus
	}

	record := TaxonomyRecord{
		ID:   uuid.NewString(),
		Type: t,
	}
	record.Ranks[RankDomain] = typeKingdoms[t][0]
	record.Ranks[RankKingdom] = typeKingdoms[t][1]

	parent, hasParent := tx.records[parentTaxonomyID]
	for rank := RankPhylum; rank < rankCount; rank++ {
		if hasParent && rank < divergence {
			record.Ranks[rank] = parent.Ranks[rank]
		} else {
			record.Ranks[rank] = tx.synthesizeName(t, rank)
		}
	}

	tx.records[record.ID] = record
	return record.ID
}

// Get returns the record for a taxonomy ID.
func (tx *Taxonomy) Get(id string) (TaxonomyRecord, bool) {
	record, ok := tx.records[id]
	return record, ok
}

// synthesizeName builds one rank name from the type's prefix table and the
// rank's suffix table.
func (tx *Taxonomy) synthesizeName(t OrganismType, rank TaxonomicRank) string {
	prefixes := taxonPrefixes[t]
	suffixes := taxonSuffixes[rank]
	if len(suffixes) == 0 {
		suffixes = taxonSuffixes[RankSpecies]
	}
	prefix := prefixes[tx.rng.Intn(len(prefixes))]
	suffix := suffixes[tx.rng.Intn(len(suffixes))]
	name := prefix + suffix
	if rank < RankGenus {
		name = strings.Title(name)
	}
	return name
}

// newSpeciesID mints an opaque species identifier.
func newSpeciesID() string {
	return uuid.NewString()
}
