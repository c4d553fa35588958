package itinerary

import "errors"

var errEmptyBody = errors.New("empty itinerary body")
