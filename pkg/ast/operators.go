package ast

// Operator identifies a builtin function of the language.
type Operator int

const (
	OpNeg Operator = iota
	OpAbs
	OpAdd
	OpSub
	OpMult
	OpDiv
	OpRemainder
	OpExp
	OpExp2
	OpPow
	OpLog
	OpSqrt
	OpCbrt
	OpHypot
	OpMax
	OpMin
	// OpCustom is any name outside the builtin catalogue.
	OpCustom
)

var operatorNames = [...]string{
	OpNeg:       "neg",
	OpAbs:       "abs",
	OpAdd:       "add",
	OpSub:       "sub",
	OpMult:      "mult",
	OpDiv:       "div",
	OpRemainder: "remainder",
	OpExp:       "exp",
	OpExp2:      "exp2",
	OpPow:       "pow",
	OpLog:       "log",
	OpSqrt:      "sqrt",
	OpCbrt:      "cbrt",
	OpHypot:     "hypot",
	OpMax:       "max",
	OpMin:       "min",
	OpCustom:    "custom",
}

var operatorsByName = func() map[string]Operator {
	out := make(map[string]Operator, len(operatorNames))
	for op, name := range operatorNames {
		if Operator(op) == OpCustom {
			continue
		}
		out[name] = Operator(op)
	}
	return out
}()

func (op Operator) String() string {
	if op < 0 || int(op) >= len(operatorNames) {
		return "custom"
	}
	return operatorNames[op]
}

// ResolveOperator maps a function name to its catalogue entry, or OpCustom.
func ResolveOperator(name string) Operator {
	if op, ok := operatorsByName[name]; ok {
		return op
	}
	return OpCustom
}

// Operators lists the catalogue in declaration order.
func Operators() []Operator {
	out := make([]Operator, 0, len(operatorNames)-1)
	for op := OpNeg; op < OpCustom; op++ {
		out = append(out, op)
	}
	return out
}
