package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Chain access error codes
const (
	CodeTransportError     Code = "TRANSPORT_ERROR"
	CodeExecutionReverted  Code = "EXECUTION_REVERTED"
	CodeInvalidTransaction Code = "INVALID_TRANSACTION"
	CodeContractCallFailed Code = "CONTRACT_CALL_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)

// Distribution pipeline error codes
const (
	CodePreflightFailed     Code = "PREFLIGHT_FAILED"
	CodeSimulationRejected  Code = "SIMULATION_REJECTED"
	CodeSubmissionFailed    Code = "SUBMISSION_FAILED"
	CodeConfirmationTimeout Code = "CONFIRMATION_TIMEOUT"
	CodeOnChainRevert       Code = "ONCHAIN_REVERT"
	CodeRunInProgress       Code = "RUN_IN_PROGRESS"
)
