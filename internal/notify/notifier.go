// Package notify delivers batch-created notifications to interested
// observers. Delivery is fire-and-forget: the reconciler's result never
// depends on whether an event reached its sink.
package notify

import (
	"context"

	"orgbook/internal/company/models"
)

// Notifier announces newly created company batches.
type Notifier interface {
	CompanyBatchCreated(ctx context.Context, event models.CompanyBatchCreated) error
}

// Noop discards all events. Used when no event sink is configured.
type Noop struct{}

func (Noop) CompanyBatchCreated(context.Context, models.CompanyBatchCreated) error {
	return nil
}
