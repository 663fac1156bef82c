// Package validator holds the pure stage-ordering check that runs locally
// before a candidate is submitted. It exists to fail fast: the ledger re-runs
// the same rule against its authoritative state and its answer is final.
package validator

import (
	"fmt"

	"chaintrack/internal/models"
)

// OrderingViolation describes a transaction that is not in the correct order
// in the supply chain. It is produced both by the local pre-check and when
// the ledger answers a candidate with a rejected status.
type OrderingViolation struct {
	ProductID     uint64
	ProductStage  models.Stage
	SenderStage   models.Stage
	ReceiverStage models.Stage
	Reason        string
}

func (e *OrderingViolation) Error() string {
	return fmt.Sprintf("transaction not in correct order in the supply chain: %s", e.Reason)
}

// Check decides whether the proposed transfer of product from sender to
// receiver respects the stage ordering: the sender must hold the product at
// its current stage and the receiver must be exactly the next stage.
// Chain-manager parties are administrative and may act outside the linear
// ordering on either side.
func Check(product models.Product, sender, receiver models.Party) error {
	if sender.Stage == models.StageChainManager || receiver.Stage == models.StageChainManager {
		return nil
	}

	if sender.Stage != product.CurrentStage {
		return &OrderingViolation{
			ProductID:     product.ID,
			ProductStage:  product.CurrentStage,
			SenderStage:   sender.Stage,
			ReceiverStage: receiver.Stage,
			Reason: fmt.Sprintf("sender stage %s does not match product stage %s",
				sender.Stage, product.CurrentStage),
		}
	}

	next, ok := sender.Stage.Next()
	if !ok || receiver.Stage != next {
		return &OrderingViolation{
			ProductID:     product.ID,
			ProductStage:  product.CurrentStage,
			SenderStage:   sender.Stage,
			ReceiverStage: receiver.Stage,
			Reason: fmt.Sprintf("receiver stage %s is not the stage after %s",
				receiver.Stage, sender.Stage),
		}
	}
	return nil
}
