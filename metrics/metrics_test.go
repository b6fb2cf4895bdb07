package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/mohamedthameursassi/flightroutes/models"
)

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "not_found", Result(fmt.Errorf("wrap: %w", models.ErrNotFound)))
	assert.Equal(t, "invalid", Result(models.ErrInvalidFilter))
	assert.Equal(t, "invalid", Result(models.ErrInvalidWaypoint))
	assert.Equal(t, "invalid", Result(models.ErrGraphTooLarge))
	assert.Equal(t, "error", Result(errors.New("boom")))
}

func TestObserveQuery(t *testing.T) {
	before := testutil.ToFloat64(queryTotal.WithLabelValues("test_op", "not_found"))
	ObserveQuery("test_op", time.Now(), models.ErrNotFound)
	after := testutil.ToFloat64(queryTotal.WithLabelValues("test_op", "not_found"))
	assert.Equal(t, before+1, after)
}
