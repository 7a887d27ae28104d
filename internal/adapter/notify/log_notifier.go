package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/koshhq/kosh/internal/domain"
)

// LogNotifier writes notification events to the application log. It stands in
// for a real delivery channel until one is connected.
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyAssetAssigned(ctx context.Context, asset *domain.Asset, holder *domain.Holder) error {
	n.logger.WithFields(logrus.Fields{
		"serial_number": asset.SerialNumber,
		"holder_email":  holder.Email,
	}).Info("Asset assigned notification")
	return nil
}

func (n *LogNotifier) NotifyAssetReturned(ctx context.Context, asset *domain.Asset, holder *domain.Holder) error {
	n.logger.WithFields(logrus.Fields{
		"serial_number": asset.SerialNumber,
		"holder_email":  holder.Email,
	}).Info("Asset returned notification")
	return nil
}

func (n *LogNotifier) NotifyAssetRetired(ctx context.Context, asset *domain.Asset) error {
	n.logger.WithField("serial_number", asset.SerialNumber).Info("Asset retired notification")
	return nil
}
