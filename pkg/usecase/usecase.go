package usecase

import (
	"time"

	"github.com/secmon-lab/sortie/pkg/domain/interfaces"
	"github.com/secmon-lab/sortie/pkg/domain/model/config"
	"github.com/secmon-lab/sortie/pkg/service/conflict"
	"github.com/secmon-lab/sortie/pkg/service/readiness"
)

// Clock returns the current time. Tests replace it to pin review-date checks.
type Clock func() time.Time

type UseCases struct {
	repo     interfaces.Repository
	policy   *config.Policy
	clock    Clock
	resolver conflict.Service

	Mission    *MissionUseCase
	RiskEntry  *RiskEntryUseCase
	JSA        *JSAUseCase
	FlightPlan *FlightPlanUseCase
}

type Option func(*UseCases)

func WithPolicy(policy *config.Policy) Option {
	return func(uc *UseCases) {
		uc.policy = policy
	}
}

func WithClock(clock Clock) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:   repo,
		policy: config.DefaultPolicy(),
		clock:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.resolver = conflict.New(
		conflict.WithGroundElevation(uc.policy.Conflict.GroundElevationFt),
		conflict.WithVerticalSeparation(uc.policy.Conflict.VerticalSeparationFt),
	)
	gate := readiness.New(uc.resolver)

	uc.Mission = NewMissionUseCase(repo, uc.policy, gate, uc.clock)
	uc.RiskEntry = NewRiskEntryUseCase(repo, uc.policy.Matrix, uc.clock)
	uc.JSA = NewJSAUseCase(repo, uc.clock)
	uc.FlightPlan = NewFlightPlanUseCase(repo, uc.resolver, uc.clock)

	return uc
}

// Policy returns the policy the use cases were built with
func (uc *UseCases) Policy() *config.Policy {
	return uc.policy
}

// Resolver returns the conflict service configured from the policy
func (uc *UseCases) Resolver() conflict.Service {
	return uc.resolver
}
