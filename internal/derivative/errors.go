package derivative

import (
	"fmt"

	"github.com/jacoelho/xmlassist/pkg/pattern"
)

func unexpected(p pattern.Pattern) string {
	return fmt.Sprintf("derivative: unexpected node %T", p)
}
