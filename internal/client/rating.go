package client

import (
	"fmt"
	"strings"
)

const maxStars = 5

// StarRating is the rating picker's state. Zero means nothing selected;
// only Reset clears a selection.
type StarRating struct {
	value int
}

func (r *StarRating) Set(value int) error {
	if value < 1 || value > maxStars {
		return fmt.Errorf("rating must be between 1 and %d", maxStars)
	}
	r.value = value
	return nil
}

func (r *StarRating) Value() int {
	return r.value
}

func (r *StarRating) Reset() {
	r.value = 0
}

func (r StarRating) String() string {
	return strings.Repeat("★", r.value) + strings.Repeat("☆", maxStars-r.value)
}
