// Package finance provides the closed-form quantitative-finance formulas the
// tutor answers with: time value of money, bond pricing, amortization, and
// basic regression statistics.
package finance

import (
	"errors"
	"math"
)

// EARToPeriodic converts an effective annual rate to the equivalent periodic
// rate for m compounding periods per year.
func EARToPeriodic(ear float64, m int) float64 {
	return math.Pow(1+ear, 1/float64(m)) - 1
}

// AnnuityPayment returns the level payment that amortizes principal P over n
// periods at periodic rate i.
func AnnuityPayment(p, i float64, n int) float64 {
	if i == 0 {
		return p / float64(n)
	}
	growth := math.Pow(1+i, float64(n))
	return p * (i * growth) / (growth - 1)
}

// AnnuityPV returns the present value of an n-period level annuity A at rate i.
func AnnuityPV(a, i float64, n int) float64 {
	if i == 0 {
		return a * float64(n)
	}
	return a * (1 - math.Pow(1+i, -float64(n))) / i
}

// AnnuityFV returns the future value of an n-period level annuity A at rate i.
func AnnuityFV(a, i float64, n int) float64 {
	if i == 0 {
		return a * float64(n)
	}
	return a * (math.Pow(1+i, float64(n)) - 1) / i
}

// PerpetuityPV returns C/r, or +Inf for non-positive rates.
func PerpetuityPV(c, r float64) float64 {
	if r <= 0 {
		return math.Inf(1)
	}
	return c / r
}

// BondPrice prices a face-value bond paying couponRate with m coupons per
// year for nYears, discounted at annual yield y.
func BondPrice(face, couponRate, y float64, nYears, m int) float64 {
	coupon := face * couponRate / float64(m)
	i := y / float64(m)
	periods := nYears * m

	var pvCoupons float64
	for t := 1; t <= periods; t++ {
		pvCoupons += coupon / math.Pow(1+i, float64(t))
	}
	pvFace := face / math.Pow(1+i, float64(periods))
	return pvCoupons + pvFace
}

// AmortizationRow is one period of a loan amortization schedule.
type AmortizationRow struct {
	Period    int     `json:"period"`
	Payment   float64 `json:"payment"`
	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`
	Balance   float64 `json:"balance"`
}

// AmortizationSchedule builds the full payment schedule for principal P over
// n periods at periodic rate i.
func AmortizationSchedule(p, i float64, n int) []AmortizationRow {
	payment := AnnuityPayment(p, i, n)
	rows := make([]AmortizationRow, 0, n)
	balance := p
	for t := 1; t <= n; t++ {
		interest := balance * i
		principal := payment - interest
		balance = math.Max(0, balance-principal)
		rows = append(rows, AmortizationRow{
			Period:    t,
			Payment:   payment,
			Interest:  interest,
			Principal: principal,
			Balance:   balance,
		})
	}
	return rows
}

// TTestGreater computes the one-sided t statistic for H1: mean > mu0 and the
// degrees of freedom.
func TTestGreater(sample []float64, mu0 float64) (t float64, df int, err error) {
	n := len(sample)
	if n < 2 {
		return 0, 0, errors.New("finance: t-test needs at least two observations")
	}
	var sum float64
	for _, x := range sample {
		sum += x
	}
	mean := sum / float64(n)

	var ss float64
	for _, x := range sample {
		d := x - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(n-1))
	if sd == 0 {
		return 0, 0, errors.New("finance: zero sample variance")
	}
	return (mean - mu0) / (sd / math.Sqrt(float64(n))), n - 1, nil
}

// OLSResult holds a simple-regression fit y = alpha + beta*x.
type OLSResult struct {
	Alpha    float64 `json:"alpha"`
	Beta     float64 `json:"beta"`
	RSquared float64 `json:"r_squared"`
}

// OLS fits an ordinary-least-squares line through (x, y).
func OLS(y, x []float64) (OLSResult, error) {
	n := len(y)
	if n != len(x) || n < 2 {
		return OLSResult{}, errors.New("finance: OLS needs equal-length series with at least two points")
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy, syy float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return OLSResult{}, errors.New("finance: regressor has zero variance")
	}

	beta := sxy / sxx
	alpha := meanY - beta*meanX

	r2 := 0.0
	if syy > 0 {
		r2 = (sxy * sxy) / (sxx * syy)
	}
	return OLSResult{Alpha: alpha, Beta: beta, RSquared: r2}, nil
}
