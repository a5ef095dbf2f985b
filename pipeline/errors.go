package pipeline

import "errors"

var (
	// ErrUnknownPipeline indicates a pipeline name with no registration.
	ErrUnknownPipeline = errors.New("unknown pipeline")

	// ErrNilDependency indicates a pipeline was constructed without one of
	// its required collaborators.
	ErrNilDependency = errors.New("nil dependency")
)
