package fingerprint

import "errors"

var (
	ErrFilterWidth      = errors.New("fingerprint: max filter width must be in 1..255")
	ErrClassifierCount  = errors.New("fingerprint: at most 16 classifiers fit a subfingerprint")
	ErrUnknownAlgorithm = errors.New("fingerprint: unknown algorithm")
	ErrUnknownOption    = errors.New("fingerprint: unknown option")
	ErrNotStarted       = errors.New("fingerprint: session not started")
	ErrEmptyFingerprint = errors.New("fingerprint: empty fingerprint")
	ErrNoFingerprintYet = errors.New("fingerprint: Finish has not produced a fingerprint")
)

func (e *Error) Error() string {
	msg := e.Stage + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Error reports a failure in one stage of a fingerprinting session.
type Error struct {
	Stage   string `json:"stage"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodeConfig      = "INVALID_CONFIG"
	ErrCodeAudio       = "AUDIO_FAILED"
	ErrCodeCalculation = "CALCULATION_FAILED"
	ErrCodeEncoding    = "ENCODING_FAILED"
	ErrCodeDecoding    = "DECODING_FAILED"
)

// Stages
const (
	StageSetup   = "setup"
	StageConsume = "consume"
	StageFinish  = "finish"
	StageEncode  = "encode"
	StageDecode  = "decode"
)

func NewError(stage, code, message string, cause error) *Error {
	return &Error{
		Stage:   stage,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
