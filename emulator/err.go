package emulator

import (
	"errors"

	"github.com/ezrec/rvm/translate"
	"github.com/ezrec/rvm/vm"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Pc     int
	Err    error
}

// Error reports the pc only when the wrapped error does not.
func (err *ErrRuntime) Error() string {
	var fault *vm.ErrFault
	located := errors.As(err.Err, &fault)

	switch {
	case err.LineNo == 0 && located:
		return err.Err.Error()
	case err.LineNo == 0:
		return f("pc 0x%04x %v", err.Pc, err.Err)
	case located:
		return f("line %d %v", err.LineNo, err.Err)
	}
	return f("line %d (pc 0x%04x) %v", err.LineNo, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
