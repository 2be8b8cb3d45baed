package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SpeciesTraits is the descriptive record attached to a species when it is
// first sighted: display material, not simulation state.
type SpeciesTraits struct {
	PhysicalTraits    []string `json:"physical_traits"`
	Color             string   `json:"color"`
	Habitat           string   `json:"habitat"`
	Behavior          []string `json:"behavior"`
	SpecialAdaptation string   `json:"special_adaptation"`
}

var speciesPhysicalTraits = [organismTypeCount][]string{
	TypeUnicellular: {
		"spherical", "rod-shaped", "spiral", "filamentous", "star-shaped",
		"cuboid", "conical", "amorphous", "flagellated", "ciliated",
		"colonial", "encapsulated", "segmented", "branching", "granular",
	},
	TypePlant: {
		"broad-leaved", "narrow-leaved", "compound-leaved", "simple-leaved",
		"bright-flowered", "plain-flowered", "flowerless", "fleshy-fruited",
		"dry-fruited", "rough-barked", "smooth-barked", "thorny", "climbing",
		"creeping", "upright", "deep-rooted", "shallow-rooted", "rhizomatous",
	},
	TypeHerbivore: {
		"long-legged", "short-legged", "hoofed", "clawed", "padded",
		"thick-furred", "fine-furred", "bare-skinned", "scaled", "feathered",
		"long-tailed", "short-tailed", "tailless", "large-eared", "small-eared",
		"horned", "antlered", "tusked", "beaked", "long-snouted",
	},
	TypeCarnivore: {
		"sharp-toothed", "strong-jawed", "retractile-clawed", "fixed-clawed",
		"spotted", "striped", "plain-coated", "thick-skinned", "scaled",
		"prehensile-tailed", "bushy-tailed", "thin-tailed", "point-eared",
		"round-eared", "night-eyed", "keen-nosed", "sharp-eared", "venom-fanged",
	},
	TypeOmnivore: {
		"mixed-toothed", "prehensile-limbed", "nimble-fingered", "flat-nailed",
		"dense-furred", "sparse-furred", "dark-skinned", "light-skinned",
		"mobile-tailed", "tailless", "mobile-eared", "fixed-eared",
		"binocular-eyed", "wide-eyed", "bipedal", "quadrupedal", "mimetic",
	},
}

var speciesColors = [organismTypeCount][]string{
	TypeUnicellular: {"transparent", "white", "cream", "pale yellow", "pale pink", "pale blue", "pale green", "grey", "golden", "silvery", "amber", "iridescent", "fluorescent", "luminescent"},
	TypePlant:       {"dark green", "light green", "blue-green", "yellow-green", "red", "purple", "yellow", "orange", "white", "pink", "violet", "two-toned", "marbled", "variegated", "striped"},
	TypeHerbivore:   {"brown", "beige", "grey", "white", "black", "russet", "fawn", "cream", "golden", "spotted", "striped", "speckled", "two-toned", "tricolor", "camouflaged"},
	TypeCarnivore:   {"black", "dark brown", "russet", "fawn", "grey", "white", "striped", "spotted", "speckled", "rosetted", "banded", "uniform", "two-toned", "masked", "ruffed"},
	TypeOmnivore:    {"brown", "black", "grey", "beige", "russet", "white", "spotted", "striped", "two-toned", "masked", "face-marked", "light-bellied", "dark-backed", "uniform"},
}

var speciesHabitats = [organismTypeCount][]string{
	TypeUnicellular: {"aquatic", "moist terrestrial", "aerial", "extremophile", "symbiotic", "parasitic", "commensal", "thermophilic", "psychrophilic", "halophilic"},
	TypePlant:       {"forest", "grassland", "desert", "mountain", "coastal", "marsh", "aquatic", "tropical", "temperate", "boreal", "alpine", "rock-dwelling", "epiphytic"},
	TypeHerbivore:   {"forest", "grassland", "desert", "mountain", "coastal", "marsh", "aquatic", "arboreal", "burrowing", "nocturnal", "diurnal", "migratory", "territorial"},
	TypeCarnivore:   {"forest", "grassland", "desert", "mountain", "coastal", "marsh", "aquatic", "arboreal", "burrowing", "nocturnal", "diurnal", "territorial", "nomadic"},
	TypeOmnivore:    {"forest", "grassland", "desert", "mountain", "coastal", "marsh", "aquatic", "arboreal", "burrowing", "nocturnal", "diurnal", "adaptable", "opportunistic"},
}

var speciesBehaviors = [organismTypeCount][]string{
	TypeUnicellular: {"motile", "sessile", "colonial", "phototropic", "chemotropic", "symbiotic", "parasitic", "saprophytic", "aerobic", "anaerobic", "sporulating", "encysted"},
	TypePlant:       {"fast-growing", "slow-growing", "spring-flowering", "summer-flowering", "autumn-flowering", "winter-flowering", "night-flowering", "insect-pollinated", "wind-pollinated", "animal-dispersed", "wind-dispersed", "explosively dispersed"},
	TypeHerbivore:   {"gregarious", "solitary", "territorial", "migratory", "diurnal", "nocturnal", "crepuscular", "grazing", "burrowing", "arboreal", "running", "leaping", "swimming", "hibernating"},
	TypeCarnivore:   {"solitary hunter", "pack hunter", "ambush hunter", "pursuit hunter", "scavenging", "territorial", "nomadic", "diurnal", "nocturnal", "crepuscular", "arboreal", "terrestrial", "aquatic", "opportunistic"},
	TypeOmnivore:    {"opportunistic", "foraging", "hoarding", "social", "solitary", "territorial", "nomadic", "diurnal", "nocturnal", "arboreal", "terrestrial", "burrowing", "climbing", "tool-using"},
}

var speciesAdaptations = [organismTypeCount][]string{
	TypeUnicellular: {"heat-resistant", "cold-resistant", "desiccation-resistant", "UV-resistant", "antibiotic-resistant", "bioluminescent", "magnetotactic", "nitrogen-fixing", "toxin-producing", "biofilm-forming", "metabolically versatile", "rapidly reproducing"},
	TypePlant:       {"drought-resistant", "frost-resistant", "flood-resistant", "fire-resistant", "carnivorous", "parasitic", "epiphytic", "mycorrhizal", "nitrogen-fixing", "toxic latex", "defensive alkaloids", "thorned", "hooked", "stinging hairs"},
	TypeHerbivore:   {"toxin-resistant", "efficient digestion", "ruminant", "multi-stomached", "camouflaged", "mimetic", "aposematic", "chemically defended", "mechanically defended", "hibernating", "seasonally migratory", "complex communication"},
	TypeCarnivore:   {"venomous", "antiseptic saliva", "night vision", "echolocating", "electroreceptive", "thermoreceptive", "camouflaged", "mimetic", "aposematic", "chemically defended", "seasonally migratory", "specialized hunting strategy"},
	TypeOmnivore:    {"versatile digestion", "varied dentition", "precise manipulation", "fast learning", "developed memory", "complex communication", "tool-making", "problem-solving", "cultural adaptation", "extended parental care", "complex social structure"},
}

// RandomSpeciesTraits draws a descriptive trait set for an organism type.
func RandomSpeciesTraits(t OrganismType, rng *rand.Rand) SpeciesTraits {
	return SpeciesTraits{
		PhysicalTraits:    sampleStrings(speciesPhysicalTraits[t], 1+rng.Intn(3), rng),
		Color:             speciesColors[t][rng.Intn(len(speciesColors[t]))],
		Habitat:           speciesHabitats[t][rng.Intn(len(speciesHabitats[t]))],
		Behavior:          sampleStrings(speciesBehaviors[t], 1+rng.Intn(2), rng),
		SpecialAdaptation: speciesAdaptations[t][rng.Intn(len(speciesAdaptations[t]))],
	}
}

func sampleStrings(pool []string, k int, rng *rand.Rand) []string {
	if k > len(pool) {
		k = len(pool)
	}
	picked := make([]string, 0, k)
	for _, idx := range rng.Perm(len(pool))[:k] {
		picked = append(picked, pool[idx])
	}
	return picked
}

// SpeciesRecord is the registry entry for one species. Lineage is stored as a
// parent pointer; child lists are reconstructed on demand.
type SpeciesRecord struct {
	SpeciesID          string        `json:"species_id"`
	ScientificName     string        `json:"scientific_name"`
	CommonName         string        `json:"common_name"`
	OrganismType       OrganismType  `json:"organism_type"`
	ParentSpeciesID    string        `json:"parent_species_id,omitempty"`
	DiscoveryTime      time.Time     `json:"discovery_time"`
	ExtinctionTime     *time.Time    `json:"extinction_time,omitempty"`
	Extinct            bool          `json:"extinct"`
	PopulationCount    int           `json:"population_count"`
	MaxPopulation      int           `json:"max_population"`
	Generation         int           `json:"generation"`
	MaxGeneration      int           `json:"max_generation"`
	MutationCount      int           `json:"mutation_count"`
	NotableAdaptations []string      `json:"notable_adaptations"`
	Traits             SpeciesTraits `json:"traits"`
}

// SpeciesRegistry stores every species ever sighted, persisting the whole map
// to a JSON document. Records are never deleted; extinction only marks them.
type SpeciesRegistry struct {
	species  map[string]*SpeciesRecord
	savePath string
	lastErr  error
}

// NewSpeciesRegistry opens (or starts) a registry backed by the given path.
// An empty path keeps the registry purely in memory. Load failures are
// logged and leave the registry empty; they never fail construction.
func NewSpeciesRegistry(savePath string) *SpeciesRegistry {
	reg := &SpeciesRegistry{
		species:  make(map[string]*SpeciesRecord),
		savePath: savePath,
	}
	if savePath != "" {
		if err := reg.load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
			log.Warn().Err(err).Str("path", savePath).Msg("species registry load failed, starting empty")
			reg.lastErr = err
		}
	}
	return reg
}

// Register records a species sighting. A second registration of an existing
// ID increments its population; a new ID creates the record and persists.
func (reg *SpeciesRegistry) Register(id, scientificName, commonName string, t OrganismType, parentID string, traits SpeciesTraits) *SpeciesRecord {
	if existing, ok := reg.species[id]; ok {
		existing.UpdatePopulation(existing.PopulationCount + 1)
		return existing
	}

	record := &SpeciesRecord{
		SpeciesID:       id,
		ScientificName:  scientificName,
		CommonName:      commonName,
		OrganismType:    t,
		ParentSpeciesID: parentID,
		DiscoveryTime:   time.Now().UTC(),
		PopulationCount: 1,
		MaxPopulation:   1,
		Generation:      1,
		MaxGeneration:   1,
		Traits:          traits,
	}
	reg.species[id] = record
	reg.save()
	return record
}

// UpdatePopulation sets the live count and flips the record to extinct
// exactly when the count reaches zero. Extinction is never undone.
func (r *SpeciesRecord) UpdatePopulation(count int) {
	r.PopulationCount = count
	if count > r.MaxPopulation {
		r.MaxPopulation = count
	}
	if count == 0 && !r.Extinct {
		r.Extinct = true
		now := time.Now().UTC()
		r.ExtinctionTime = &now
	}
}

// UpdateGeneration tracks the highest generation seen in the species.
func (r *SpeciesRecord) UpdateGeneration(generation int) {
	r.Generation = generation
	if generation > r.MaxGeneration {
		r.MaxGeneration = generation
	}
}

// AddNotableAdaptation appends an adaptation tag once.
func (r *SpeciesRecord) AddNotableAdaptation(adaptation string) {
	for _, existing := range r.NotableAdaptations {
		if existing == adaptation {
			return
		}
	}
	r.NotableAdaptations = append(r.NotableAdaptations, adaptation)
}

// Update applies population/generation/adaptation changes and persists after
// significant ones (an extinction or a new adaptation).
func (reg *SpeciesRegistry) Update(id string, population, generation int, adaptation string) {
	record, ok := reg.species[id]
	if !ok {
		return
	}
	wasExtinct := record.Extinct
	record.UpdatePopulation(population)
	if generation > 0 {
		record.UpdateGeneration(generation)
	}
	if adaptation != "" {
		record.AddNotableAdaptation(adaptation)
	}
	if (record.Extinct && !wasExtinct) || adaptation != "" {
		reg.save()
	}
}

// Get returns the record for a species ID, or nil.
func (reg *SpeciesRegistry) Get(id string) *SpeciesRecord {
	return reg.species[id]
}

// All returns every record ordered by discovery time.
func (reg *SpeciesRegistry) All() []*SpeciesRecord {
	records := make([]*SpeciesRecord, 0, len(reg.species))
	for _, r := range reg.species {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].DiscoveryTime.Before(records[j].DiscoveryTime)
	})
	return records
}

// Living returns all non-extinct records.
func (reg *SpeciesRegistry) Living() []*SpeciesRecord {
	var records []*SpeciesRecord
	for _, r := range reg.All() {
		if !r.Extinct {
			records = append(records, r)
		}
	}
	return records
}

// ExtinctSpecies returns all extinct records.
func (reg *SpeciesRegistry) ExtinctSpecies() []*SpeciesRecord {
	var records []*SpeciesRecord
	for _, r := range reg.All() {
		if r.Extinct {
			records = append(records, r)
		}
	}
	return records
}

// ByType returns all records of one organism type.
func (reg *SpeciesRegistry) ByType(t OrganismType) []*SpeciesRecord {
	var records []*SpeciesRecord
	for _, r := range reg.All() {
		if r.OrganismType == t {
			records = append(records, r)
		}
	}
	return records
}

// Children reconstructs the child list of a species from parent pointers.
func (reg *SpeciesRegistry) Children(id string) []*SpeciesRecord {
	var children []*SpeciesRecord
	for _, r := range reg.All() {
		if r.ParentSpeciesID == id && r.SpeciesID != id {
			children = append(children, r)
		}
	}
	return children
}

// TreeNode is one branch of the evolutionary tree.
type TreeNode struct {
	SpeciesID      string      `json:"species_id"`
	ScientificName string      `json:"scientific_name"`
	CommonName     string      `json:"common_name"`
	Extinct        bool        `json:"extinct"`
	Type           string      `json:"type"`
	Children       []*TreeNode `json:"children,omitempty"`
}

// EvolutionaryTree builds the forest rooted at species with no parent, or a
// single tree when rootID names a known species.
func (reg *SpeciesRegistry) EvolutionaryTree(rootID string) []*TreeNode {
	var roots []*SpeciesRecord
	if rootID != "" {
		if r := reg.Get(rootID); r != nil {
			roots = []*SpeciesRecord{r}
		}
	} else {
		for _, r := range reg.All() {
			if r.ParentSpeciesID == "" {
				roots = append(roots, r)
			}
		}
	}

	trees := make([]*TreeNode, 0, len(roots))
	for _, root := range roots {
		trees = append(trees, reg.buildBranch(root, make(map[string]bool)))
	}
	return trees
}

func (reg *SpeciesRegistry) buildBranch(record *SpeciesRecord, visited map[string]bool) *TreeNode {
	visited[record.SpeciesID] = true
	node := &TreeNode{
		SpeciesID:      record.SpeciesID,
		ScientificName: record.ScientificName,
		CommonName:     record.CommonName,
		Extinct:        record.Extinct,
		Type:           record.OrganismType.String(),
	}
	for _, child := range reg.Children(record.SpeciesID) {
		if !visited[child.SpeciesID] {
			node.Children = append(node.Children, reg.buildBranch(child, visited))
		}
	}
	return node
}

// Counts summarizes the registry by status and organism type.
func (reg *SpeciesRegistry) Counts() map[string]int {
	counts := map[string]int{
		"total":   len(reg.species),
		"living":  0,
		"extinct": 0,
	}
	for _, r := range reg.species {
		if r.Extinct {
			counts["extinct"]++
		} else {
			counts["living"]++
			counts[r.OrganismType.String()+"_living"]++
		}
		counts[r.OrganismType.String()]++
	}
	return counts
}

// Description renders the trait set as display prose.
func (st SpeciesTraits) Description() string {
	return fmt.Sprintf("A %s organism, %s. Inhabits %s terrain. Behavior: %s. Special adaptation: %s.",
		st.Color, strings.Join(st.PhysicalTraits, ", "), st.Habitat,
		strings.Join(st.Behavior, ", "), st.SpecialAdaptation)
}

// Report renders a textual summary of the registry: totals, per-type counts,
// and the most recently discovered and extinct species.
func (reg *SpeciesRegistry) Report() string {
	counts := reg.Counts()
	lines := []string{
		"=== SPECIES REGISTRY ===",
		fmt.Sprintf("Total species: %d", counts["total"]),
		fmt.Sprintf("Living: %d", counts["living"]),
		fmt.Sprintf("Extinct: %d", counts["extinct"]),
		"",
		"--- By organism type ---",
	}
	for _, t := range AllOrganismTypes() {
		lines = append(lines, fmt.Sprintf("%s: %d (living: %d)",
			t, counts[t.String()], counts[t.String()+"_living"]))
	}

	living := reg.Living()
	lines = append(lines, "", "--- Recently discovered ---")
	for i := len(living) - 1; i >= 0 && i >= len(living)-5; i-- {
		lines = append(lines, fmt.Sprintf("%s (%s)", living[i].ScientificName, living[i].CommonName))
	}

	extinct := reg.ExtinctSpecies()
	sort.Slice(extinct, func(i, j int) bool {
		ti, tj := extinct[i].ExtinctionTime, extinct[j].ExtinctionTime
		if ti == nil || tj == nil {
			return tj == nil
		}
		return ti.After(*tj)
	})
	lines = append(lines, "", "--- Recently extinct ---")
	for i := 0; i < len(extinct) && i < 5; i++ {
		lines = append(lines, fmt.Sprintf("%s (%s)", extinct[i].ScientificName, extinct[i].CommonName))
	}
	return strings.Join(lines, "\n")
}

// LastError reports the most recent persistence failure, or nil.
func (reg *SpeciesRegistry) LastError() error {
	return reg.lastErr
}

// save persists the whole registry with a write-then-rename so concurrent
// readers never observe torn state. Failures are logged and remembered but
// never interrupt the simulation.
func (reg *SpeciesRegistry) save() {
	if reg.savePath == "" {
		return
	}
	if err := reg.saveTo(reg.savePath); err != nil {
		log.Warn().Err(err).Str("path", reg.savePath).Msg("species registry save failed")
		reg.lastErr = err
		return
	}
	reg.lastErr = nil
}

func (reg *SpeciesRegistry) saveTo(path string) error {
	data, err := json.MarshalIndent(reg.species, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding species registry")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".species-registry-*")
	if err != nil {
		return errors.Wrap(err, "creating registry temp file")
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "writing species registry")
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "closing registry temp file")
	}
	if err = os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replacing species registry")
	}
	return nil
}

func (reg *SpeciesRegistry) load() error {
	data, err := os.ReadFile(reg.savePath)
	if err != nil {
		return errors.Wrap(err, "reading species registry")
	}
	species := make(map[string]*SpeciesRecord)
	if err := json.Unmarshal(data, &species); err != nil {
		return errors.Wrap(err, "decoding species registry")
	}
	reg.species = species
	return nil
}
