package models

// OutcomeEvent is the message published for every terminal submission
// outcome. Used across the orchestration and messaging layers.
type OutcomeEvent struct {
	AttemptID       string `json:"AttemptID"`
	State           string `json:"State"`
	Sender          string `json:"Sender"`
	Receiver        string `json:"Receiver"`
	ProductID       uint64 `json:"ProductID"`
	AuthorizationID uint64 `json:"AuthorizationID,omitempty"`
	TransferRef     string `json:"TransferRef,omitempty"`
	Error           string `json:"Error,omitempty"`
	Timestamp       string `json:"Timestamp"`
}
