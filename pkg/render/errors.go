package render

import "errors"

// ErrConsumed is the panic value raised when a Renderer is used after it was
// reified. It signals a bug in the lowering code, not a template error.
var ErrConsumed = errors.New("render: renderer used after reification")
