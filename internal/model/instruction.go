package model

import "fmt"

// InstructionKind tags a LearningInstruction.
type InstructionKind int

const (
	InstructionNone InstructionKind = iota
	InstructionLearnSimplePhrase
)

var instructionNames = map[InstructionKind]string{
	InstructionLearnSimplePhrase: "LEARN_SIMPLE_PHRASE",
}

func (k InstructionKind) String() string {
	if s, ok := instructionNames[k]; ok {
		return s
	}
	return "NONE"
}

// MarshalText encodes the kind as its wire command.
func (k InstructionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a wire command. Empty and "NONE" map to InstructionNone.
func (k *InstructionKind) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "" || s == "NONE" {
		*k = InstructionNone
		return nil
	}
	for kind, name := range instructionNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown learning command %q", s)
}

// LearningInstruction is an update the external model asks the gatekeeper to apply.
type LearningInstruction struct {
	Kind     InstructionKind `json:"command"`
	Query    string          `json:"query"`
	Response string          `json:"response"`
}

// RemoteResult is the structured reply from the external model.
type RemoteResult struct {
	UserResponse string               `json:"user_response"`
	Instruction  *LearningInstruction `json:"learning_instruction,omitempty"`
}

// Verdict is the user's reaction to a classification.
type Verdict string

const (
	VerdictConfirm Verdict = "confirm"
	VerdictReject  Verdict = "reject"
)
