// Package sample is exported by the analyzer tests.
package sample

import "strings"

// Shout upper-cases s when loud is set.
func Shout(s string, loud bool) string {
	if loud {
		return strings.ToUpper(s)
	}
	return s
}

type counter struct{ n int }

func (c *counter) inc() { c.n++ }
