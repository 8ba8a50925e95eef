package bytefreq

import "errors"

var (
	// ErrEmptyModel indicates a model file with no classes.
	ErrEmptyModel = errors.New("model has no classes")

	// ErrUnlabeledClass indicates a model class without a label.
	ErrUnlabeledClass = errors.New("model class has no label")

	// ErrBadWeightCount indicates a class whose weight vector is not 256 wide.
	ErrBadWeightCount = errors.New("class must have exactly 256 weights")
)
