package lib

import (
	"errors"
	"fmt"
	"math"
)

type ErrorI interface {
	Code() ErrorCode     // Returns the error code
	Module() ErrorModule // Returns the error module
	error                // Implements the built-in error interface
}

var _ ErrorI = &Error{} // Ensures *Error implements ErrorI

type ErrorCode uint32 // Defines a type for error codes

type ErrorModule string // Defines a type for error modules

type Error struct {
	ECode   ErrorCode   `json:"code"`   // Error code
	EModule ErrorModule `json:"module"` // Error module
	Msg     string      `json:"msg"`    // Error message
}

func NewError(code ErrorCode, module ErrorModule, msg string) *Error {
	// Constructs a new Error instance
	return &Error{ECode: code, EModule: module, Msg: msg}
}

// Code() returns the associated error code
func (p *Error) Code() ErrorCode { return p.ECode }

// Module() returns module field
func (p *Error) Module() ErrorModule { return p.EModule }

// String() calls Error()
func (p *Error) String() string { return p.Error() }

// Error() returns a formatted string including module, code and message
func (p *Error) Error() string {
	return fmt.Sprintf("\nModule:  %s\nCode:    %d\nMessage: %s", p.EModule, p.ECode, p.Msg)
}

// IsCode() returns true if the error is an ErrorI of the module and code
func IsCode(err error, module ErrorModule, code ErrorCode) bool {
	if err == nil {
		return false
	}
	var e ErrorI
	if !errors.As(err, &e) || e == nil {
		return false
	}
	return e.Module() == module && e.Code() == code
}

const (
	NoCode ErrorCode = math.MaxUint32

	// Main Module
	MainModule ErrorModule = "main"

	// Main Module Error Codes
	CodeJSONMarshal     ErrorCode = 1
	CodeJSONUnmarshal   ErrorCode = 2
	CodeUnmarshal       ErrorCode = 3
	CodeWriteFile       ErrorCode = 4
	CodeReadFile        ErrorCode = 5
	CodeInvalidArgument ErrorCode = 6
	CodeStringToBytes   ErrorCode = 7
	CodeInvalidEntry    ErrorCode = 8
	CodeEntryChain      ErrorCode = 9
	CodeServerTimeout   ErrorCode = 10

	// Proof of History Module
	PoHModule ErrorModule = "poh"

	// Proof of History Module Error Codes
	CodeConflict        ErrorCode = 1
	CodeRecorderClosed  ErrorCode = 2
	CodeAlreadyStarted  ErrorCode = 3
	CodeInvalidPoHMode  ErrorCode = 4
	CodeInvalidCadence  ErrorCode = 5
	CodeServiceNotStart ErrorCode = 6

	// Vote Module
	VoteModule ErrorModule = "vote"

	// Vote Module Error Codes
	CodeDeserialize          ErrorCode = 1
	CodeUnauthorized         ErrorCode = 2
	CodeInvalidInstruction   ErrorCode = 3
	CodeAlreadyRegistered    ErrorCode = 4
	CodeMissingAccounts      ErrorCode = 5
	CodeVoteHistoryTooLong   ErrorCode = 6
	CodeUnknownInstruction   ErrorCode = 7
	CodeInvalidVoteStateNode ErrorCode = 8

	// Ledger Module
	LedgerModule ErrorModule = "ledger"

	// Ledger Module Error Codes
	CodeUnknownLastId      ErrorCode = 1
	CodeDuplicateSignature ErrorCode = 2
	CodeUnknownProgram     ErrorCode = 3
	CodeEmptySignature     ErrorCode = 4
	CodeNoAccountKeys      ErrorCode = 5
	CodeAccountExists      ErrorCode = 6

	// Finality Module
	FinalityModule ErrorModule = "finality"

	// Finality Module Error Codes
	CodeNoValidSupermajority ErrorCode = 1

	// Storage Module
	StorageModule ErrorModule = "store"

	// Storage Module Error Codes
	CodeOpenDB     ErrorCode = 1
	CodeCloseDB    ErrorCode = 2
	CodeCommitDB   ErrorCode = 3
	CodeStoreSet   ErrorCode = 4
	CodeStoreGet   ErrorCode = 5
	CodeInvalidKey ErrorCode = 6

	// Controller Module
	ControllerModule ErrorModule = "controller"

	// Controller Module Error Codes
	CodeErrorGroup ErrorCode = 1

	// RPC Module
	RPCModule ErrorModule = "rpc"

	// RPC Module Error Codes
	CodeInvalidParams ErrorCode = 1
	CodeGetRequest    ErrorCode = 2
	CodeHttpStatus    ErrorCode = 3
	CodeReadBody      ErrorCode = 4
	CodeNotFound      ErrorCode = 5
)

func ErrJSONMarshal(err error) ErrorI {
	return NewError(CodeJSONMarshal, MainModule, fmt.Sprintf("json.marshal() failed with err: %s", err.Error()))
}

func ErrJSONUnmarshal(err error) ErrorI {
	return NewError(CodeJSONUnmarshal, MainModule, fmt.Sprintf("json.unmarshal() failed with err: %s", err.Error()))
}

func ErrUnmarshal(err error) ErrorI {
	return NewError(CodeUnmarshal, MainModule, fmt.Sprintf("unmarshal() failed with err: %s", err.Error()))
}

func ErrWriteFile(err error) ErrorI {
	return NewError(CodeWriteFile, MainModule, fmt.Sprintf("os.WriteFile() failed with err: %s", err.Error()))
}

func ErrReadFile(err error) ErrorI {
	return NewError(CodeReadFile, MainModule, fmt.Sprintf("os.ReadFile() failed with err: %s", err.Error()))
}

func ErrInvalidArgument() ErrorI {
	return NewError(CodeInvalidArgument, MainModule, "the argument is invalid")
}

func ErrStringToBytes(err error) ErrorI {
	return NewError(CodeStringToBytes, MainModule, fmt.Sprintf("stringToBytes() failed with err: %s", err.Error()))
}

func ErrInvalidEntry(index int) ErrorI {
	return NewError(CodeInvalidEntry, MainModule, fmt.Sprintf("entry %d is malformed", index))
}

func ErrEntryChain(index int) ErrorI {
	return NewError(CodeEntryChain, MainModule, fmt.Sprintf("entry %d doesn't extend the previous id", index))
}

func ErrServerTimeout() ErrorI {
	return NewError(CodeServerTimeout, MainModule, "server timeout")
}
