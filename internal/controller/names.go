package controller

import (
	"fmt"
	"strings"
)

// eventName returns the bare type name of ev for log fields.
func eventName(ev Event) string {
	name := fmt.Sprintf("%T", ev)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
