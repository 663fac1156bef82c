package models

import "fmt"

// Stage is the ordinal position of a party (and of a product's custody) in
// the supply-chain pipeline. The ordinal order encodes the legal forward
// direction of custody; ChainManager is an administrative role, not a
// position in the physical chain.
type Stage int

const (
	StageChainManager Stage = iota
	StageRawMaterials
	StageSupplier
	StageManufacturer
	StageDistributor
	StageConsumer
)

// MaxStage is the last position in the physical pipeline.
const MaxStage = StageConsumer

var stageNames = map[Stage]string{
	StageChainManager: "Supply Chain Manager",
	StageRawMaterials: "Raw Materials",
	StageSupplier:     "Supplier",
	StageManufacturer: "Manufacturer",
	StageDistributor:  "Distributor",
	StageConsumer:     "Consumer",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Valid reports whether s is one of the defined stages.
func (s Stage) Valid() bool {
	_, ok := stageNames[s]
	return ok
}

// Next returns the stage that follows s in the pipeline. The second return
// value is false when s is the last pipeline stage or not a pipeline stage.
func (s Stage) Next() (Stage, bool) {
	if s < StageChainManager || s >= MaxStage {
		return s, false
	}
	return s + 1, true
}

// Progress derives completion of the pipeline as a fraction in [0, 1].
// It is computed from the ordinal, never stored.
func (s Stage) Progress() float64 {
	if !s.Valid() {
		return 0
	}
	return float64(s) / float64(MaxStage)
}

// ParseStage maps a display name back to its stage.
func ParseStage(name string) (Stage, error) {
	for s, n := range stageNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stage name %q", name)
}
