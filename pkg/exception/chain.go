package exception

import "errors"

var (
	ErrChainEmpty             = errors.New("chain: no elements configured")
	ErrChainUnknownElement    = errors.New("chain: unknown element name")
	ErrChainHeadNotOriginator = errors.New("chain: head element cannot originate orders")
	ErrChainRatioLengths      = errors.New("chain: spread and size ratio lists differ in length")
	ErrChainBadParameter      = errors.New("chain: bad element parameter")
	ErrChainNoReference       = errors.New("chain: no reference price in model state")
)
