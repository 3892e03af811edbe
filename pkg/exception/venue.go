package exception

import "errors"

var (
	ErrVenueUnsupportedInstruction = errors.New("venue: unsupported instruction kind")
	ErrVenueOrderMissing           = errors.New("venue: order not on the book")
	ErrVenueDuplicateClientID      = errors.New("venue: duplicate client id")
	ErrVenueNoSnapshot             = errors.New("venue: no market snapshot received yet")
	ErrVenueStaleSnapshot          = errors.New("venue: market snapshot is stale")
	ErrVenueRejected               = errors.New("venue: instruction rejected")
)
