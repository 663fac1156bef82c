package validator

import (
	"errors"
	"strings"
	"testing"

	"chaintrack/internal/models"
)

func party(stage models.Stage) models.Party {
	return models.Party{Address: "0x00000000000000000000000000000000000000aa", Stage: stage}
}

func product(stage models.Stage) models.Product {
	return models.Product{ID: 7, CurrentStage: stage}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		product  models.Product
		sender   models.Party
		receiver models.Party
		wantErr  bool
	}{
		{
			name:     "forward step one stage",
			product:  product(models.StageSupplier),
			sender:   party(models.StageSupplier),
			receiver: party(models.StageManufacturer),
		},
		{
			name:     "skipping a stage is rejected",
			product:  product(models.StageSupplier),
			sender:   party(models.StageSupplier),
			receiver: party(models.StageDistributor),
			wantErr:  true,
		},
		{
			name:     "backward step is rejected",
			product:  product(models.StageManufacturer),
			sender:   party(models.StageManufacturer),
			receiver: party(models.StageSupplier),
			wantErr:  true,
		},
		{
			name:     "sender not holding the product's stage",
			product:  product(models.StageManufacturer),
			sender:   party(models.StageSupplier),
			receiver: party(models.StageManufacturer),
			wantErr:  true,
		},
		{
			name:     "consumer cannot pass further",
			product:  product(models.StageConsumer),
			sender:   party(models.StageConsumer),
			receiver: party(models.StageConsumer),
			wantErr:  true,
		},
		{
			name:     "chain manager may send anywhere",
			product:  product(models.StageRawMaterials),
			sender:   party(models.StageChainManager),
			receiver: party(models.StageDistributor),
		},
		{
			name:     "chain manager may receive from anywhere",
			product:  product(models.StageDistributor),
			sender:   party(models.StageDistributor),
			receiver: party(models.StageChainManager),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.product, tt.sender, tt.receiver)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Check accepted an out-of-order transfer")
				}
				var violation *OrderingViolation
				if !errors.As(err, &violation) {
					t.Fatalf("Check returned %T, want *OrderingViolation", err)
				}
				if !strings.Contains(violation.Error(), "transaction not in correct order in the supply chain") {
					t.Errorf("unexpected violation message: %q", violation.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Check rejected a legal transfer: %v", err)
			}
		})
	}
}
