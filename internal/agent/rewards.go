package agent

import "github.com/likhilliki/EcoPulse/internal/config"

// TokensForAQI maps an AQI value to a token amount and air-quality
// level by first match over the ordered tier table. The caller is
// responsible for rejecting AQI values outside the valid range first.
func TokensForAQI(tiers []config.RewardTier, aqi int) (int, string) {
	for _, tier := range tiers {
		if aqi <= tier.UpperBound {
			return tier.Tokens, tier.Level
		}
	}
	// Past the last bound; pay out the worst tier.
	last := tiers[len(tiers)-1]
	return last.Tokens, last.Level
}
