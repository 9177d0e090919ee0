package prompt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinner_StartStop(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSpinner("Detecting dbt version...", WithSpinnerWriter(&buf), WithSpinnerColor(""))

	s.Start()
	s.Stop()
	assert.False(t, s.Active())

	s.Stop()
	assert.False(t, s.Active())
}

func TestNewSpinner_Suffix(t *testing.T) {
	t.Parallel()

	s := NewSpinner("Detecting dbt version...")
	assert.Equal(t, " Detecting dbt version...", s.s.Suffix)
	assert.False(t, s.Active())
}
