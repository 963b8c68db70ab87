package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	CodeTransportError:     "RPC call failed",
	CodeExecutionReverted:  "Contract execution reverted",
	CodeInvalidTransaction: "Invalid transaction request",
	CodeContractCallFailed: "Smart contract call failed",

	CodeCircuitOpen: "Circuit breaker is open",

	CodePreflightFailed:     "Pre-flight check failed",
	CodeSimulationRejected:  "Distribution simulation rejected",
	CodeSubmissionFailed:    "Transaction submission failed",
	CodeConfirmationTimeout: "Transaction confirmation timed out",
	CodeOnChainRevert:       "Transaction reverted on chain",
	CodeRunInProgress:       "A distribution run is already in progress",
}
