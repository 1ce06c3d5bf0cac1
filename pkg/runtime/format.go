package runtime

import "fmt"

// Format renders a result the way the interactive driver prints it: ints as a
// rounded integer label, doubles with six decimals.
func Format(n Number) string {
	switch {
	case n.IsInt():
		return fmt.Sprintf("Integer : %.f", n.Value)
	case n.IsDouble():
		return fmt.Sprintf("Double : %f", n.Value)
	default:
		return fmt.Sprintf("No Type : %f", n.Value)
	}
}

func (n Number) String() string {
	return Format(n)
}
