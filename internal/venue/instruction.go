package venue

import (
	"fmt"

	"main/internal/model"
)

// InstructionKind place, cancel, crank, settle
type InstructionKind uint8

const (
	_instruction_kind_beg InstructionKind = iota
	InstructionPlace
	InstructionCancel
	InstructionCrank
	InstructionSettle
	_instruction_kind_end
)

func (k InstructionKind) IsAvailable() bool {
	return k > _instruction_kind_beg && k < _instruction_kind_end
}

func (k InstructionKind) String() string {
	switch k {
	case InstructionPlace:
		return "PLACE"
	case InstructionCancel:
		return "CANCEL"
	case InstructionCrank:
		return "CRANK"
	case InstructionSettle:
		return "SETTLE"
	default:
		return "UNKNOWN"
	}
}

// Instruction is one venue action. Order and ClientID are only meaningful
// for place and cancel kinds.
type Instruction struct {
	Kind        InstructionKind
	Market      string
	Order       model.Order
	ClientID    uint64
	OkIfMissing bool // cancels: the order may already be gone, treat as success
}

func (ix Instruction) String() string {
	switch ix.Kind {
	case InstructionPlace:
		return fmt.Sprintf("PLACE %s %s", ix.Market, ix.Order)
	case InstructionCancel:
		return fmt.Sprintf("CANCEL %s client id %d", ix.Market, ix.ClientID)
	default:
		return fmt.Sprintf("%s %s", ix.Kind, ix.Market)
	}
}

// Result is the per-instruction outcome of a submitted batch. Instructions
// fail independently: one rejection never invalidates its neighbors.
type Result struct {
	Instruction Instruction
	Err         error
}

func (r Result) Ok() bool {
	return r.Err == nil
}
