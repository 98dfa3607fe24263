package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"food-ordering-api/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/foods", "200"))
	ObserveHTTP("GET", "/foods", 200, 12*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/foods", "200")))

	before = testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))
	ObserveHTTP("GET", "", 404, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestInFlight(t *testing.T) {
	done := TrackInFlight()
	assert.Equal(t, float64(1), testutil.ToFloat64(httpInFlight))
	done()
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}

func TestOrderCounters(t *testing.T) {
	OrderPlaced(3)
	assert.GreaterOrEqual(t, testutil.ToFloat64(ordersPlaced.WithLabelValues("3")), float64(1))

	OrderTransition(models.StatusPending, models.StatusInTransit, models.KindShop)
	assert.GreaterOrEqual(t,
		testutil.ToFloat64(orderTransitions.WithLabelValues("PENDING", "IN-TRANSIT", "shop")), float64(1))
}

func TestHandlerExposesRegistry(t *testing.T) {
	ObserveHTTP("POST", "/order/place-order", 201, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "food_ordering_http_requests_total")
}
