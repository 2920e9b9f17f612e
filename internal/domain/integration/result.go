package integration

import "github.com/google/uuid"

// OrderOutcome classifies what the pipeline did with one inbound order
type OrderOutcome string

const (
	OutcomeCreated  OrderOutcome = "created"
	OutcomeExisting OrderOutcome = "existing"
	OutcomeError    OrderOutcome = "error"
)

// OrderResult is the per-order entry of a batch result. Success and
// AlreadyExists are the flat consumer contract; Outcome carries the same
// information as a single classifier (created implies success,
// existing implies already_exists).
type OrderResult struct {
	ExternalID    string       `json:"external_id"`
	OrderNumber   string       `json:"order_number"`
	OrderID       uuid.UUID    `json:"order_id,omitempty"`
	Outcome       OrderOutcome `json:"outcome"`
	Success       bool         `json:"success"`
	AlreadyExists bool         `json:"already_exists,omitempty"`
	Status        string       `json:"status,omitempty"`
	Error         string       `json:"error,omitempty"`
	Warnings      []string     `json:"warnings,omitempty"`
}

// BatchResult summarizes one synchronization batch. A malformed order
// counts as an error without aborting the rest of the batch, so
// Total = Processed + Existing + Errors always holds.
type BatchResult struct {
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Existing  int           `json:"existing"`
	Errors    int           `json:"errors"`
	Results   []OrderResult `json:"results"`
}

// AddCreated records a successfully imported order
func (b *BatchResult) AddCreated(result OrderResult) {
	result.Outcome = OutcomeCreated
	result.Success = true
	b.Total++
	b.Processed++
	b.Results = append(b.Results, result)
}

// AddExisting records an order skipped because it already exists
func (b *BatchResult) AddExisting(result OrderResult) {
	result.Outcome = OutcomeExisting
	result.Success = true
	result.AlreadyExists = true
	b.Total++
	b.Existing++
	b.Results = append(b.Results, result)
}

// AddError records an order that could not be imported
func (b *BatchResult) AddError(result OrderResult, err error) {
	result.Outcome = OutcomeError
	result.Success = false
	if err != nil {
		result.Error = err.Error()
	}
	b.Total++
	b.Errors++
	b.Results = append(b.Results, result)
}
