package render

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

var (
	ErrValidationUnavailable = errors.New("validation layers requested, but not available")
	ErrNoDevice              = errors.New("failed to find GPUs with Vulkan support")
	ErrNoSuitableDevice      = errors.New("failed to find a suitable GPU")
	ErrNoSurfaceFormat       = errors.New("surface reports no formats")
)

// Error is a failed GPU API call: the operation that was attempted and
// the status code the driver returned.
type Error struct {
	Op     string
	Result vulkan.Result
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v (VkResult %d)", e.Op, vulkan.Error(e.Result), int32(e.Result))
}

func (e *Error) Unwrap() error {
	return vulkan.Error(e.Result)
}

// newError records the caller's stack along with op and res.
func newError(op string, res vulkan.Result) error {
	return errors.WithStack(&Error{Op: op, Result: res})
}

// ResultOf extracts the driver status code from err, if it carries one.
func ResultOf(err error) (vulkan.Result, bool) {
	var vkErr *Error
	if errors.As(err, &vkErr) {
		return vkErr.Result, true
	}
	return vulkan.Success, false
}
