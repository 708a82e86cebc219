package handlers

import (
	"errors"
	"strconv"
	"time"
)

const timeFormat = time.RFC3339

// parsePositiveInt parses a strictly positive base-10 integer
func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("value must be positive")
	}
	return n, nil
}
