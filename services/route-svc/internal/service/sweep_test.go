package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routing/pkg/apperror"
)

func sweepRequestFrom(req *RouteRequest) *SweepRequest {
	return &SweepRequest{
		RequestID:  req.RequestID,
		CallerID:   req.CallerID,
		Algorithm:  req.Algorithm,
		StartX:     req.StartX,
		StartY:     req.StartY,
		EndX:       req.EndX,
		EndY:       req.EndY,
		Segments:   req.Segments,
		Simulation: req.Simulation,
		Events:     req.Events,
	}
}

func TestSweepDepartures_SlotOrder(t *testing.T) {
	svc := newTestService()

	resp, err := svc.SweepDepartures(context.Background(), sweepRequestFrom(lineRequest()))
	require.NoError(t, err)
	require.Len(t, resp.Slots, 8)

	want := []struct{ timeOfDay, dayType string }{
		{"morning", "weekday"},
		{"afternoon", "weekday"},
		{"evening", "weekday"},
		{"night", "weekday"},
		{"morning", "weekend"},
		{"afternoon", "weekend"},
		{"evening", "weekend"},
		{"night", "weekend"},
	}
	for i, w := range want {
		assert.Equal(t, w.timeOfDay, resp.Slots[i].TimeOfDay, "slot %d", i)
		assert.Equal(t, w.dayType, resp.Slots[i].DayType, "slot %d", i)
	}
}

func TestSweepDepartures_BestSlot(t *testing.T) {
	svc := newTestService()

	resp, err := svc.SweepDepartures(context.Background(), sweepRequestFrom(lineRequest()))
	require.NoError(t, err)

	for i, slot := range resp.Slots {
		assert.True(t, slot.Found, "slot %d should have a path", i)
		assert.Equal(t, 2, slot.HopCount, "slot %d", i)
	}

	// Ночь в выходной даёт минимальные множители: 0.8 * 0.85
	require.NotNil(t, resp.Best)
	assert.Equal(t, "night", resp.Best.TimeOfDay)
	assert.Equal(t, "weekend", resp.Best.DayType)
	assert.InDelta(t, 23.0*0.8*0.85, resp.Best.TotalWeight, 1e-9)
	assert.Equal(t, int64(31), resp.Best.EstimatedTimeMinutes)

	assert.Equal(t, *resp.Best, resp.Slots[7])
}

func TestSweepDepartures_Disconnected(t *testing.T) {
	svc := newTestService()

	req := &SweepRequest{
		StartX: 0, StartY: 0,
		EndX: 110, EndY: 100,
		Segments: []SegmentInput{
			{ID: "r1", StartX: 0, StartY: 0, EndX: 10, EndY: 0, RoadType: "NORMAL", Density: "LOW"},
			{ID: "far", StartX: 100, StartY: 100, EndX: 110, EndY: 100, RoadType: "NORMAL", Density: "LOW"},
		},
	}

	resp, err := svc.SweepDepartures(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Slots, 8)
	for i, slot := range resp.Slots {
		assert.False(t, slot.Found, "slot %d", i)
	}
	assert.Nil(t, resp.Best)
}

func TestSweepDepartures_WeatherFixedFromBase(t *testing.T) {
	svc := newTestService()

	req := sweepRequestFrom(lineRequest())
	req.Simulation = &SimulationParams{WeatherCondition: "SNOW"}

	resp, err := svc.SweepDepartures(context.Background(), req)
	require.NoError(t, err)

	// Снег действует во всех слотах, лучший слот не меняется
	require.NotNil(t, resp.Best)
	assert.Equal(t, "night", resp.Best.TimeOfDay)
	assert.Equal(t, "weekend", resp.Best.DayType)
	assert.InDelta(t, 23.0*0.8*0.85*1.6, resp.Best.TotalWeight, 1e-9)
}

func TestSweepDepartures_AlgorithmPropagated(t *testing.T) {
	svc := newTestService()

	req := sweepRequestFrom(lineRequest())
	req.Algorithm = "dijkstra"

	resp, err := svc.SweepDepartures(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "dijkstra", resp.Algorithm)
}

func TestSweepDepartures_StartEqualsEnd(t *testing.T) {
	svc := newTestService()

	req := sweepRequestFrom(lineRequest())
	req.EndX, req.EndY = 0, 0

	resp, err := svc.SweepDepartures(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, resp.Best)
	assert.Equal(t, 0.0, resp.Best.TotalWeight)
	assert.Equal(t, 0, resp.Best.HopCount)
	// При равном весе выигрывает более ранний слот
	assert.Equal(t, "morning", resp.Best.TimeOfDay)
	assert.Equal(t, "weekday", resp.Best.DayType)
}

func TestSweepDepartures_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.SweepDepartures(ctx, nil)
	if !apperror.Is(err, apperror.CodeNilInput) {
		t.Errorf("nil request: code = %v, want %v", apperror.Code(err), apperror.CodeNilInput)
	}

	req := sweepRequestFrom(lineRequest())
	req.Algorithm = "bfs"
	_, err = svc.SweepDepartures(ctx, req)
	if !apperror.Is(err, apperror.CodeInvalidAlgorithm) {
		t.Errorf("bad algorithm: code = %v, want %v", apperror.Code(err), apperror.CodeInvalidAlgorithm)
	}
}
