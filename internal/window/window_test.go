package window

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrVulkanUnsupportedSurvivesWrapping(t *testing.T) {
	err := errors.Wrap(errors.WithStack(ErrVulkanUnsupported), "init window")
	assert.Equal(t, ErrVulkanUnsupported, errors.Cause(err))
	assert.ErrorIs(t, err, ErrVulkanUnsupported)
}
