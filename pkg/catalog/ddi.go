package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// DDI is an ISO 11783-11 data dictionary identifier.
type DDI uint16

// ParseDDI reads the hexadecimal form used by DPD@B and DLV@A ("0106", "0x0106").
func ParseDDI(s string) (DDI, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("parse ddi %q: %w", s, err)
	}
	return DDI(v), nil
}

// String renders four upper-case hex digits.
func (d DDI) String() string { return fmt.Sprintf("%04X", uint16(d)) }
