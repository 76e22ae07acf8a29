package models

import (
	"errors"
	"strconv"
	"strings"
)

var ErrIncorrectField = errors.New("field must be name=value")

// ParseFields converts name=value pairs typed at the prompt into a record.
// "true"/"false" become booleans and integers become numbers; everything
// else stays a string.
func ParseFields(s []string) (Record, error) {
	out := make(Record, len(s))
	for _, item := range s {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, ErrIncorrectField
		}
		out[name] = coerce(strings.TrimSpace(value))
	}
	return out, nil
}

func coerce(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return v
}
