package models

import (
	"time"

	id "orgbook/pkg/domain"
)

// RecordTypeCompany tags batch events with the record type they describe, so
// downstream consumers can route without decoding the entries.
const RecordTypeCompany = "company"

// CreatedEntry describes one record of a batch-created event.
type CreatedEntry struct {
	ID       id.CompanyID `json:"id"`
	Domain   string       `json:"domain,omitempty"`
	Name     string       `json:"name"`
	Position int64        `json:"position"`
}

// CompanyBatchCreated is emitted after a reconcile run persists new companies.
// It is fire-and-forget: delivery has no effect on the reconcile result.
type CompanyBatchCreated struct {
	WorkspaceID id.WorkspaceID `json:"workspace_id"`
	RecordType  string         `json:"record_type"`
	Entries     []CreatedEntry `json:"entries"`
	OccurredAt  time.Time      `json:"occurred_at"`
}
