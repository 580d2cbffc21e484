package pipeset

import "errors"

var (
	// ErrPipeAttached 管道已挂接
	ErrPipeAttached = errors.New("pipe already attached")

	// ErrNilPipe 管道为空
	ErrNilPipe = errors.New("nil pipe")
)
