package recognize

import (
	"fmt"
	"strings"

	"symrec/m"
)

// Media-control symbols, in class order.
const (
	Play m.Class = iota
	Stop
	Pause
	Rewind
	Forward
)

const ClassCount = 5

var symbolNames = [ClassCount]string{"Play", "Stop", "Pause", "Rewind", "Forward"}

// Name returns the symbol name of c, or its number for classes outside the
// known set.
func Name(c m.Class) string {
	if c >= 0 && int(c) < len(symbolNames) {
		return symbolNames[c]
	}
	return c.String()
}

func ParseSymbol(name string) (m.Class, error) {
	for i, n := range symbolNames {
		if strings.EqualFold(n, name) {
			return m.Class(i), nil
		}
	}
	return m.Unlabeled, fmt.Errorf("unknown symbol %q", name)
}

// ValidateStructure checks a layer structure against the number of classes
// the caller intends to recognize.
func ValidateStructure(structure []int, classCount int) error {
	if err := m.ValidateStructure(structure); err != nil {
		return err
	}
	if out := structure[len(structure)-1]; out != classCount {
		return fmt.Errorf("%w: output layer has %d neurons for %d classes", m.ErrConfiguration, out, classCount)
	}
	return nil
}
