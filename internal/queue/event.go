// Package queue defines message payloads exchanged over the message broker.
package queue

// JobCompletedEvent is published when a picking job reaches COMPLETED.
// It carries enough information for downstream consumers to log, notify
// shipping, or feed analytics without querying the primary database.
type JobCompletedEvent struct {
	JobID                uint64 `json:"job_id"`
	JobNumber            string `json:"job_number"`
	OrderID              uint64 `json:"order_id"`
	CompletedBy          uint64 `json:"completed_by"`
	Forced               bool   `json:"forced"`
	ItemsTotal           int    `json:"items_total"`
	ItemsDone            int    `json:"items_done"`
	ReleasedReservations int    `json:"released_reservations"`
	CompletedAt          string `json:"completed_at"`
}
