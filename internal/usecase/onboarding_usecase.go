package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/koshhq/kosh/internal/domain"
	"github.com/koshhq/kosh/internal/ports"
)

// CategoryGrant is one satisfied category in an onboarding run
type CategoryGrant struct {
	Category     string `json:"category"`
	SerialNumber string `json:"serial_number"`
	AssignmentID string `json:"assignment_id"`
}

// CategoryFailure is one category the onboarding run could not satisfy
type CategoryFailure struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// OnboardingReport is the combined success/partial-failure result of one
// onboarding run.
type OnboardingReport struct {
	HolderEmail string            `json:"holder_email"`
	Granted     []CategoryGrant   `json:"granted"`
	Failures    []CategoryFailure `json:"failures"`
}

// OnboardingService equips a new holder with one asset per required
// category. The run is deliberately non-transactional across categories: a
// failed category is recorded and the batch continues.
type OnboardingService struct {
	store  ports.Store
	engine *AssignmentEngine
	logger *logrus.Logger
}

// NewOnboardingService creates a new onboarding service
func NewOnboardingService(store ports.Store, engine *AssignmentEngine, logger *logrus.Logger) *OnboardingService {
	return &OnboardingService{store: store, engine: engine, logger: logger}
}

// Provision assigns any available asset per required category to the holder.
func (s *OnboardingService) Provision(ctx context.Context, holderEmail string, categories []string, actorID string) (*OnboardingReport, error) {
	repos := s.store.Repos()
	holder, err := repos.Holders.FindByEmail(ctx, holderEmail)
	if err != nil || !holder.Verified {
		return nil, domain.NewNotFound("no verified holder found with email " + holderEmail)
	}

	report := &OnboardingReport{HolderEmail: holderEmail}
	for _, category := range categories {
		asset, err := repos.Assets.FindAvailableByCategory(ctx, category)
		if err != nil {
			reason := err.Error()
			if domain.IsNotFound(err) {
				reason = "no available asset in category " + category
			}
			report.Failures = append(report.Failures, CategoryFailure{Category: category, Reason: reason})
			continue
		}

		// Assign re-validates availability and exclusivity in its own
		// transaction; the Available read above is only a candidate pick.
		assignment, err := s.engine.Assign(ctx, asset.SerialNumber, holderEmail, actorID)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"holder_email":  holderEmail,
				"category":      category,
				"serial_number": asset.SerialNumber,
			}).WithError(err).Warn("onboarding assignment failed")
			report.Failures = append(report.Failures, CategoryFailure{Category: category, Reason: err.Error()})
			continue
		}

		report.Granted = append(report.Granted, CategoryGrant{
			Category:     category,
			SerialNumber: asset.SerialNumber,
			AssignmentID: assignment.ID,
		})
	}
	return report, nil
}
