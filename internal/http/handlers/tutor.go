package handlers

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/bankofshash/support-ai/internal/finance"
	"github.com/bankofshash/support-ai/pkg/logging"
)

// TutorHandler exposes the finance-tutor calculators: time value of money,
// bond pricing, amortization schedules, and basic statistics.
type TutorHandler struct {
	logger *logging.Logger
}

// NewTutorHandler creates a tutor handler.
func NewTutorHandler(logger *logging.Logger) *TutorHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TutorHandler{logger: logger}
}

// AnnuityRequest is the POST /api/tutor/annuity body. Rate is the effective
// annual rate; PeriodsPerYear defaults to 1.
type AnnuityRequest struct {
	Principal      float64 `json:"principal"`
	Payment        float64 `json:"payment"`
	Rate           float64 `json:"rate"`
	Periods        int     `json:"periods"`
	PeriodsPerYear int     `json:"periods_per_year,omitempty"`
}

// AnnuityResponse carries whichever annuity quantities apply to the request.
type AnnuityResponse struct {
	PeriodicRate float64 `json:"periodic_rate"`
	Payment      float64 `json:"payment,omitempty"`
	PresentValue float64 `json:"present_value,omitempty"`
	FutureValue  float64 `json:"future_value,omitempty"`
}

// Annuity computes annuity payment, PV, and FV from an effective annual rate.
func (h *TutorHandler) Annuity(w http.ResponseWriter, r *http.Request) {
	var req AnnuityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Periods <= 0 {
		writeError(w, http.StatusBadRequest, "periods must be positive")
		return
	}
	m := req.PeriodsPerYear
	if m <= 0 {
		m = 1
	}

	i := finance.EARToPeriodic(req.Rate, m)
	resp := AnnuityResponse{PeriodicRate: i}
	if req.Principal > 0 {
		resp.Payment = finance.AnnuityPayment(req.Principal, i, req.Periods)
	}
	if req.Payment > 0 {
		resp.PresentValue = finance.AnnuityPV(req.Payment, i, req.Periods)
		resp.FutureValue = finance.AnnuityFV(req.Payment, i, req.Periods)
	}
	writeJSON(w, http.StatusOK, resp)
}

// PerpetuityRequest is the POST /api/tutor/perpetuity body.
type PerpetuityRequest struct {
	Cashflow float64 `json:"cashflow"`
	Rate     float64 `json:"rate"`
}

// Perpetuity values a level perpetual cashflow at the given rate.
func (h *TutorHandler) Perpetuity(w http.ResponseWriter, r *http.Request) {
	var req PerpetuityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Rate <= 0 {
		writeError(w, http.StatusBadRequest, "rate must be positive")
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"present_value": finance.PerpetuityPV(req.Cashflow, req.Rate),
	})
}

// BondRequest is the POST /api/tutor/bond body.
type BondRequest struct {
	Face         float64 `json:"face"`
	CouponRate   float64 `json:"coupon_rate"`
	Yield        float64 `json:"yield"`
	Years        int     `json:"years"`
	CouponsPerYr int     `json:"coupons_per_year,omitempty"`
}

// Bond prices a coupon bond at the requested yield.
func (h *TutorHandler) Bond(w http.ResponseWriter, r *http.Request) {
	var req BondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Face <= 0 || req.Years <= 0 {
		writeError(w, http.StatusBadRequest, "face and years must be positive")
		return
	}
	m := req.CouponsPerYr
	if m <= 0 {
		m = 2
	}
	price := finance.BondPrice(req.Face, req.CouponRate, req.Yield, req.Years, m)
	writeJSON(w, http.StatusOK, map[string]float64{"price": price})
}

// AmortizationRequest is the POST /api/tutor/amortization body. Rate is the
// periodic rate.
type AmortizationRequest struct {
	Principal float64 `json:"principal"`
	Rate      float64 `json:"rate"`
	Periods   int     `json:"periods"`
}

// Amortization builds a full loan amortization schedule.
func (h *TutorHandler) Amortization(w http.ResponseWriter, r *http.Request) {
	var req AmortizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Principal <= 0 || req.Periods <= 0 {
		writeError(w, http.StatusBadRequest, "principal and periods must be positive")
		return
	}
	rows := finance.AmortizationSchedule(req.Principal, req.Rate, req.Periods)
	writeJSON(w, http.StatusOK, map[string]any{"schedule": rows})
}

// RegressionRequest is the POST /api/tutor/regression body.
type RegressionRequest struct {
	Y []float64 `json:"y"`
	X []float64 `json:"x"`
}

// Regression fits an OLS line through the supplied series.
func (h *TutorHandler) Regression(w http.ResponseWriter, r *http.Request) {
	var req RegressionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := finance.OLS(req.Y, req.X)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// TTestRequest is the POST /api/tutor/ttest body for H1: mean > mu0.
type TTestRequest struct {
	Sample []float64 `json:"sample"`
	Mu0    float64   `json:"mu0"`
}

// TTestResponse carries the one-sided t statistic and degrees of freedom.
type TTestResponse struct {
	T  float64 `json:"t"`
	DF int     `json:"df"`
}

// TTest computes a one-sided t statistic against mu0.
func (h *TutorHandler) TTest(w http.ResponseWriter, r *http.Request) {
	var req TTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t, df, err := finance.TTestGreater(req.Sample, req.Mu0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		writeError(w, http.StatusBadRequest, "sample produced a non-finite statistic")
		return
	}
	writeJSON(w, http.StatusOK, TTestResponse{T: t, DF: df})
}
