package agent

import (
	"fmt"
	"time"

	"github.com/likhilliki/EcoPulse/internal/config"
)

const (
	ReasonInvalidAQI     = "invalid_aqi"
	ReasonCooldownActive = "cooldown_active"

	// Score reported for a submission bounced by the cooldown. It is
	// informational only, no quality assessment happens on that path.
	cooldownScore = 90

	baseScore        = 100
	consistencyBonus = 5
)

// Result is the outcome of evaluating one submission.
type Result struct {
	Verified      bool
	Score         int
	TokensAwarded int
	Level         string
	Reason        string
	Message       string
}

// Verifier decides whether a submission earns a reward. It is a pure
// rule set over the history handed to it and never touches storage,
// so the cooldown and payout logic stay independently testable.
type Verifier struct {
	cooldown time.Duration
	maxAQI   int
	tiers    []config.RewardTier
}

func NewVerifier(cfg *config.AgentConfig) *Verifier {
	return &Verifier{
		cooldown: cfg.Cooldown(),
		maxAQI:   cfg.MaxAQI,
		tiers:    cfg.RewardTiers,
	}
}

func (v *Verifier) Cooldown() time.Duration {
	return v.cooldown
}

// ValidAQI reports whether aqi falls inside the accepted range.
func (v *Verifier) ValidAQI(aqi int) bool {
	return aqi >= 0 && aqi <= v.maxAQI
}

// Evaluate runs input validation, the cooldown gate, and the reward
// table, in that order.
//
// lastVerifiedAt is the verified_at of the caller's most recently
// verified submission (nil when they have never been verified) and
// must be selected by timestamp, not insertion order. hasPriorVerified
// feeds the consistency bonus on the reported score.
func (v *Verifier) Evaluate(aqi int, lastVerifiedAt *time.Time, hasPriorVerified bool, now time.Time) Result {
	if aqi < 0 || aqi > v.maxAQI {
		return Result{
			Verified: false,
			Score:    0,
			Reason:   ReasonInvalidAQI,
			Message:  fmt.Sprintf("Invalid AQI: %d", aqi),
		}
	}

	if lastVerifiedAt != nil && now.Sub(*lastVerifiedAt) < v.cooldown {
		return Result{
			Verified: false,
			Score:    cooldownScore,
			Reason:   ReasonCooldownActive,
			Message:  "Already verified within the last hour",
		}
	}

	score := baseScore
	if hasPriorVerified {
		score += consistencyBonus
		if score > 100 {
			score = 100
		}
	}

	tokens, level := TokensForAQI(v.tiers, aqi)

	return Result{
		Verified:      true,
		Score:         score,
		TokensAwarded: tokens,
		Level:         level,
		Message:       fmt.Sprintf("Hourly AQI check: %s air quality (%d). +%d ECO tokens awarded!", level, aqi, tokens),
	}
}
