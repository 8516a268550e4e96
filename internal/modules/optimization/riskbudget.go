package optimization

import "github.com/Bwillia13x/epv-pm/internal/domain"

// NewRiskBudget builds a risk budget around a target volatility and
// position/sector caps, filling in the standing sector allocation and
// concentration defaults.
func NewRiskBudget(targetVolatility, maxPositionSize, maxSectorExposure float64) domain.RiskBudget {
	trackingErr := 0.03
	return domain.RiskBudget{
		TotalRiskBudget: targetVolatility,
		SectorAllocations: map[string]float64{
			"Technology": 0.25,
			"Healthcare": 0.20,
			"Financial":  0.15,
			"Consumer":   0.15,
			"Industrial": 0.10,
			"Other":      0.15,
		},
		PositionLimits: map[string]float64{
			"single_position":  maxPositionSize,
			"top_5_positions":  0.4,
			"top_10_positions": 0.6,
		},
		ConcentrationLimits: map[string]float64{
			"sector_max":   maxSectorExposure,
			"country_max":  0.5,
			"currency_max": 0.6,
		},
		MaxPositionSize:    maxPositionSize,
		MaxSectorExposure:  maxSectorExposure,
		MaxSingleStockRisk: 0.05,
		TargetTrackingErr:  &trackingErr,
	}
}
