package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunContextStepsNamesFailingStep(t *testing.T) {
	var ran []string
	var reached []contextStage
	step := func(stage contextStage, op string, err error) contextStep {
		return contextStep{stage: stage, op: op, run: func() error {
			ran = append(ran, op)
			return err
		}}
	}
	steps := []contextStep{
		step(stageInstance, "create instance", nil),
		step(stageSurface, "create surface", ErrNoSurfaceFormat),
		step(stagePhysicalDevice, "pick physical device", nil),
	}

	err := runContextSteps(steps, func(s contextStage) { reached = append(reached, s) })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSurfaceFormat)
	assert.Contains(t, err.Error(), "render context: create surface")
	assert.NotContains(t, err.Error(), "uninitialized")
	assert.Equal(t, []string{"create instance", "create surface"}, ran)
	assert.Equal(t, []contextStage{stageInstance}, reached)
}

func TestRunContextStepsReachesEveryStage(t *testing.T) {
	var reached []contextStage
	steps := []contextStep{
		{stage: stageInstance, op: "create instance", run: func() error { return nil }},
		{stage: stageReady, op: "create logical device", run: func() error { return nil }},
	}

	require.NoError(t, runContextSteps(steps, func(s contextStage) { reached = append(reached, s) }))
	assert.Equal(t, []contextStage{stageInstance, stageReady}, reached)
}
