package service

import "pos-analytics/internal/models"

// FitTrendline fits a least-squares line through the daily sales series,
// using the day index as x. The slope's sign is what the dashboard cares
// about (sales rising or falling over the filtered window); R-squared
// says how well a line explains the series.
func FitTrendline(daily []models.TrendPoint) models.SalesTrendline {
	if len(daily) < 3 {
		return models.SalesTrendline{}
	}

	n := float64(len(daily))

	sumX := 0.0
	sumY := 0.0
	sumXY := 0.0
	sumX2 := 0.0

	for i, p := range daily {
		x := float64(i)
		y := p.TotalSales
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	numerator := n*sumXY - sumX*sumY
	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return models.SalesTrendline{}
	}

	slope := numerator / denominator
	meanY := sumY / n
	intercept := meanY - slope*(sumX/n)

	ssTotal := 0.0
	ssResidual := 0.0
	for i, p := range daily {
		predicted := slope*float64(i) + intercept
		ssTotal += (p.TotalSales - meanY) * (p.TotalSales - meanY)
		ssResidual += (p.TotalSales - predicted) * (p.TotalSales - predicted)
	}

	trend := models.SalesTrendline{Slope: slope}
	if ssTotal != 0 {
		trend.RSquared = 1 - (ssResidual / ssTotal)
	}
	return trend
}
