package analyses

import "errors"

var (
	// ErrNotFound indicates the analysis does not exist or is not owned by the user.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates client-supplied fields failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotCancellable indicates the analysis is already terminal.
	ErrNotCancellable = errors.New("analysis is not cancellable")
	// ErrNotRetryable indicates only error or cancelled analyses can be retried.
	ErrNotRetryable = errors.New("analysis is not retryable")
	// ErrReportNotReady indicates the analysis has not completed yet.
	ErrReportNotReady = errors.New("report not ready")
)

// Terminal error codes recorded on the analysis row.
const (
	ErrorCodeExtractionFailed = "extraction_failed"
	ErrorCodeAgentTimeout     = "agent_timeout"
	ErrorCodeAgentFailed      = "agent_failed"
	ErrorCodeCancelled        = "cancelled"
)

// userMessages maps a terminal error code to the message shown to the user.
var userMessages = map[string]string{
	ErrorCodeExtractionFailed: "Não foi possível extrair texto do documento. Tente enviar outro arquivo.",
	ErrorCodeAgentTimeout:     "A análise excedeu o tempo limite. Tente novamente com um documento menor ou menos fontes.",
	ErrorCodeAgentFailed:      "A análise falhou. Tente novamente em alguns instantes.",
	ErrorCodeCancelled:        "Análise cancelada pelo usuário.",
}

// UserMessage returns the user-facing message for a terminal error code.
func UserMessage(code string) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return userMessages[ErrorCodeAgentFailed]
}
