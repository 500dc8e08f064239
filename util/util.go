// Package util has a few things that don't belong anywhere else.
package util

import (
	"fmt"
	"log"

	"github.com/goccy/go-json"
)

// Logging turns Logf on.
var Logging = false

// Logf calls log.Printf when Logging is true.
func Logf(format string, args ...interface{}) {
	if Logging {
		log.Printf(format, args...)
	}
}

// JS renders its argument as JSON or, failing that, with '%#v'.
func JS(x interface{}) string {
	if x == nil {
		return "null"
	}
	js, err := json.Marshal(&x)
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(js)
}

// ShortLimit is the number of runes JShort keeps.
var ShortLimit = 70

// JShort is JS truncated (with "...") to ShortLimit runes.
func JShort(x interface{}) string {
	rs := []rune(JS(x))
	if len(rs) <= ShortLimit {
		return string(rs)
	}
	return string(rs[:ShortLimit]) + "..."
}
