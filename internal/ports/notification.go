package ports

import (
	"context"

	"github.com/koshhq/kosh/internal/domain"
)

// NotificationService is the outbound delivery collaborator. Delivery itself
// is external to this engine; calls are best-effort.
type NotificationService interface {
	// NotifyAssetAssigned sends notification when an asset is assigned
	NotifyAssetAssigned(ctx context.Context, asset *domain.Asset, holder *domain.Holder) error

	// NotifyAssetReturned sends notification when an asset is returned
	NotifyAssetReturned(ctx context.Context, asset *domain.Asset, holder *domain.Holder) error

	// NotifyAssetRetired sends notification when an asset is retired
	NotifyAssetRetired(ctx context.Context, asset *domain.Asset) error
}
