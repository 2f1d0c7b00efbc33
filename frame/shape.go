package frame

import "fmt"

// A ShapeError describes operands whose dimensions violate an
// operation's contract. Since a shape mismatch is always a caller bug
// and never an operational failure, shape errors are raised with
// panic rather than returned.
type ShapeError string

func (e ShapeError) Error() string { return string(e) }

// Shapef panics with a ShapeError built from the given format string.
// It is shared by packages that enforce tensor shape contracts.
func Shapef(format string, v ...interface{}) {
	panic(ShapeError(fmt.Sprintf(format, v...)))
}
