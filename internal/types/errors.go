package types

import "errors"

var (
	ErrNotFound            = errors.New("requested item not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrUnknownCountry      = errors.New("country not found")
	ErrNoCitiesAvailable   = errors.New("no cities available after applying exclusions")
	ErrNoAllocation        = errors.New("could not generate allocation options")
	ErrNoCandidates        = errors.New("no POIs found matching your criteria")
	ErrNoPOIsPassedFilters = errors.New("no POIs passed the filters")
)
