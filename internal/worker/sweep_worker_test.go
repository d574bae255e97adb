package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelight/crucible/internal/availability"
	"github.com/forgelight/crucible/internal/crafting"
)

type stubCrafting struct {
	delivered int
	err       error
	calls     int
}

func (s *stubCrafting) Availability(context.Context, string, string, string) (*availability.Result, error) {
	return nil, nil
}

func (s *stubCrafting) Craft(context.Context, crafting.Request) (*crafting.Outcome, error) {
	return nil, nil
}

func (s *stubCrafting) ProcessDelayed(context.Context) (int, error) {
	s.calls++
	return s.delivered, s.err
}

func TestSweepWorkerProcess(t *testing.T) {
	stub := &stubCrafting{delivered: 3}
	w := NewSweepWorker(stub)

	require.NoError(t, w.Process(context.Background()))
	assert.Equal(t, 1, stub.calls)
}

func TestSweepWorkerProcessError(t *testing.T) {
	sweepErr := errors.New("sweep failed")
	stub := &stubCrafting{err: sweepErr}
	w := NewSweepWorker(stub)

	err := w.Process(context.Background())
	assert.ErrorIs(t, err, sweepErr)
}
