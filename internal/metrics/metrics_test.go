package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(slotDecisions.WithLabelValues("open"))
	ObserveDecision("open")
	ObserveDecision("open")
	assert.Equal(t, before+2, testutil.ToFloat64(slotDecisions.WithLabelValues("open")))

	beforeRace := testutil.ToFloat64(slotRaces)
	ObserveSlotRace()
	assert.Equal(t, beforeRace+1, testutil.ToFloat64(slotRaces))

	beforeTr := testutil.ToFloat64(bookingTransitions.WithLabelValues("confirmed"))
	ObserveTransition("confirmed")
	assert.Equal(t, beforeTr+1, testutil.ToFloat64(bookingTransitions.WithLabelValues("confirmed")))
}

func TestHandlerServesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Register()
	ObserveValidation("open")

	r := gin.New()
	r.Use(Middleware())
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stadium_booking_booking_validations_total")
}
