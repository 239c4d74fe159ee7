package model

// Color flags how the primary phone compares with the matched reference phone.
type Color string

const (
	ColorBlack Color = "black"
	ColorPink  Color = "pink"
)

func (c Color) String() string {
	return string(c)
}
