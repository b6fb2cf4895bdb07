package ui

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestRoute(t *testing.T) {
	assert.Equal(t, "A → B → C", Route([]string{"A", "B", "C"}))
	assert.Equal(t, "(no route)", Route(nil))
}

func TestField(t *testing.T) {
	var buf bytes.Buffer
	Field(&buf, "distance", "343.5 km")
	assert.Equal(t, "  distance:    343.5 km\n", buf.String())
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	Error(&buf, errors.New("boom"))
	assert.Equal(t, "✗ boom\n", buf.String())
}

func TestSavings(t *testing.T) {
	assert.Equal(t, "-0:10:00", Savings("-0:10:00"))
	assert.Equal(t, "500", Savings("500"))
}
