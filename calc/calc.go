// Package calc is a stack evaluator for integer expressions in reverse
// Polish notation:
//
//	2 3 * 4 +    => 10
package calc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ezrec/rvm/translate"
)

var f = translate.From

var (
	ErrDivisionByZero = errors.New(f("division by zero"))
	ErrStackUnderflow = errors.New(f("stack underflow"))
)

// ErrToken is returned by Parse for an unrecognized word.
type ErrToken string

func (err ErrToken) Error() string {
	return f("'%v' is not a number or operator", string(err))
}

// Kind is the operation of an Op.
type Kind int

const (
	PUSH = Kind(iota) // Push Value.
	ADD
	SUB
	MUL
	DIV
)

var kindText = map[Kind]string{
	PUSH: "push",
	ADD:  "+",
	SUB:  "-",
	MUL:  "*",
	DIV:  "/",
}

func (kind Kind) String() string {
	text, ok := kindText[kind]
	if !ok {
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
	return text
}

// Op is a single step of an expression.
type Op struct {
	Kind  Kind
	Value int64 // Only used by PUSH.
}

func (op Op) String() string {
	if op.Kind == PUSH {
		return strconv.FormatInt(op.Value, 10)
	}
	return op.Kind.String()
}

// Interpret evaluates ops, and returns the value on the top of the stack.
func Interpret(ops []Op) (value int64, err error) {
	var stack []int64

	pop := func() (v int64, ok bool) {
		if len(stack) == 0 {
			return
		}
		v = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ok = true
		return
	}

	for _, op := range ops {
		if op.Kind == PUSH {
			stack = append(stack, op.Value)
			continue
		}

		a, ok := pop()
		if !ok {
			err = ErrStackUnderflow
			return
		}
		if op.Kind == DIV && a == 0 {
			err = ErrDivisionByZero
			return
		}
		b, ok := pop()
		if !ok {
			err = ErrStackUnderflow
			return
		}

		switch op.Kind {
		case ADD:
			stack = append(stack, b+a)
		case SUB:
			stack = append(stack, b-a)
		case MUL:
			stack = append(stack, b*a)
		case DIV:
			stack = append(stack, b/a)
		}
	}

	value, ok := pop()
	if !ok {
		err = ErrStackUnderflow
		return
	}

	return
}

// Parse converts whitespace separated RPN text into ops.
func Parse(text string) (ops []Op, err error) {
	for _, word := range strings.Fields(text) {
		switch strings.ToLower(word) {
		case "+", "add":
			ops = append(ops, Op{Kind: ADD})
		case "-", "sub":
			ops = append(ops, Op{Kind: SUB})
		case "*", "mul":
			ops = append(ops, Op{Kind: MUL})
		case "/", "div":
			ops = append(ops, Op{Kind: DIV})
		default:
			var value int64
			value, err = strconv.ParseInt(word, 0, 64)
			if err != nil {
				ops = nil
				err = ErrToken(word)
				return
			}
			ops = append(ops, Op{Kind: PUSH, Value: value})
		}
	}

	return
}
