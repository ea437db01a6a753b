package lifecycle

import "errors"

// Startup errors. All three abort the pipeline; there is no degraded
// mode.
var (
	// ErrConfigResolution is returned when stage 1 cannot produce a
	// usable configuration.
	ErrConfigResolution = errors.New("config resolution failed")

	// ErrConnection is returned when stage 2 cannot establish the shared
	// connection.
	ErrConnection = errors.New("connection failed")

	// ErrLifecycleOrder is returned when a stage is invoked out of
	// sequence. It marks an integration bug, not a runtime condition.
	ErrLifecycleOrder = errors.New("lifecycle stage out of order")
)

// IsLifecycleOrder returns true if the error is ErrLifecycleOrder.
func IsLifecycleOrder(err error) bool {
	return errors.Is(err, ErrLifecycleOrder)
}
