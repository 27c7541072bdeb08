package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankofshash/support-ai/pkg/logging"
)

func postTutor(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestTutorAnnuity(t *testing.T) {
	h := NewTutorHandler(logging.Default())

	rec := postTutor(t, h.Annuity, "/api/tutor/annuity", AnnuityRequest{
		Principal:      250000,
		Rate:           0.05,
		Periods:        360,
		PeriodsPerYear: 12,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AnnuityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 0.004074, resp.PeriodicRate, 1e-6)
	assert.Greater(t, resp.Payment, 1000.0)
	assert.Less(t, resp.Payment, 2000.0)
}

func TestTutorAnnuityRejectsZeroPeriods(t *testing.T) {
	h := NewTutorHandler(nil)
	rec := postTutor(t, h.Annuity, "/api/tutor/annuity", AnnuityRequest{Principal: 1000})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTutorPerpetuity(t *testing.T) {
	h := NewTutorHandler(nil)

	rec := postTutor(t, h.Perpetuity, "/api/tutor/perpetuity", PerpetuityRequest{Cashflow: 100, Rate: 0.04})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 2500, resp["present_value"], 1e-9)
}

func TestTutorPerpetuityRejectsZeroRate(t *testing.T) {
	h := NewTutorHandler(nil)
	rec := postTutor(t, h.Perpetuity, "/api/tutor/perpetuity", PerpetuityRequest{Cashflow: 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTutorBond(t *testing.T) {
	h := NewTutorHandler(nil)

	rec := postTutor(t, h.Bond, "/api/tutor/bond", BondRequest{
		Face:       1000,
		CouponRate: 0.05,
		Yield:      0.05,
		Years:      10,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Coupon rate equals yield, so the bond prices at par.
	assert.InDelta(t, 1000, resp["price"], 1e-6)
}

func TestTutorAmortization(t *testing.T) {
	h := NewTutorHandler(nil)

	rec := postTutor(t, h.Amortization, "/api/tutor/amortization", AmortizationRequest{
		Principal: 10000,
		Rate:      0.01,
		Periods:   12,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Schedule []struct {
			Period  int     `json:"period"`
			Balance float64 `json:"balance"`
		} `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Schedule, 12)
	assert.InDelta(t, 0, resp.Schedule[11].Balance, 1e-6)
}

func TestTutorRegression(t *testing.T) {
	h := NewTutorHandler(nil)

	rec := postTutor(t, h.Regression, "/api/tutor/regression", RegressionRequest{
		Y: []float64{2, 4, 6, 8},
		X: []float64{1, 2, 3, 4},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Alpha    float64 `json:"alpha"`
		Beta     float64 `json:"beta"`
		RSquared float64 `json:"r_squared"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 0, resp.Alpha, 1e-9)
	assert.InDelta(t, 2, resp.Beta, 1e-9)
	assert.InDelta(t, 1, resp.RSquared, 1e-9)
}

func TestTutorTTest(t *testing.T) {
	h := NewTutorHandler(nil)

	rec := postTutor(t, h.TTest, "/api/tutor/ttest", TTestRequest{
		Sample: []float64{5.1, 4.9, 5.3, 5.0, 5.2},
		Mu0:    4.5,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TTestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.DF)
	assert.Greater(t, resp.T, 0.0)
}

func TestTutorTTestRejectsTinySample(t *testing.T) {
	h := NewTutorHandler(nil)
	rec := postTutor(t, h.TTest, "/api/tutor/ttest", TTestRequest{Sample: []float64{1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
