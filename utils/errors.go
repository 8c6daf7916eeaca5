package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the stable, machine-readable identifier of a classified failure.
// Format: E-<CATEGORY>-<NNN>.
type ErrorCode string

const (
	ErrAuthRequired       ErrorCode = "E-AUTH-001"
	ErrAuthSessionExpired ErrorCode = "E-AUTH-002"

	ErrMealGetFailed    ErrorCode = "E-MEAL-001"
	ErrMealCreateFailed ErrorCode = "E-MEAL-002"
	ErrMealDeleteFailed ErrorCode = "E-MEAL-003"
	ErrMealUpdateFailed ErrorCode = "E-MEAL-004"

	ErrAIKeyNotSet        ErrorCode = "E-AI-001"
	ErrAIAnalysisFailed   ErrorCode = "E-AI-002"
	ErrAIServerOverloaded ErrorCode = "E-AI-003"
	ErrAIEmptyResponse    ErrorCode = "E-AI-004"
	ErrAIParseFailed      ErrorCode = "E-AI-005"

	ErrBarcodeProductNotFound ErrorCode = "E-BARCODE-001"
	ErrBarcodeScanFailed      ErrorCode = "E-BARCODE-002"
	ErrBarcodeNotProvided     ErrorCode = "E-BARCODE-003"

	ErrSummaryGetFailed    ErrorCode = "E-SUMMARY-001"
	ErrSummaryUpdateFailed ErrorCode = "E-SUMMARY-002"

	ErrInputRequired ErrorCode = "E-INPUT-001"
	ErrInputInvalid  ErrorCode = "E-INPUT-002"

	ErrServer ErrorCode = "E-SERVER-001"
)

type errorInfo struct {
	message string
	status  int
}

var errorTable = map[ErrorCode]errorInfo{
	ErrAuthRequired:       {"ログインが必要です。ログインページに移動してください。", http.StatusUnauthorized},
	ErrAuthSessionExpired: {"セッションが切れました。再度ログインしてください。", http.StatusUnauthorized},

	ErrMealGetFailed:    {"食事記録の読み込みに失敗しました。時間をおいて再度お試しください。", http.StatusInternalServerError},
	ErrMealCreateFailed: {"食事の登録に失敗しました。入力内容を確認して再度お試しください。", http.StatusInternalServerError},
	ErrMealDeleteFailed: {"食事の削除に失敗しました。時間をおいて再度お試しください。", http.StatusInternalServerError},
	ErrMealUpdateFailed: {"食事の更新に失敗しました。入力内容を確認して再度お試しください。", http.StatusInternalServerError},

	ErrAIKeyNotSet:        {"現在AI機能が利用できません。管理者にお問い合わせください。", http.StatusInternalServerError},
	ErrAIAnalysisFailed:   {"食事の解析に失敗しました。もう一度お試しください。", http.StatusInternalServerError},
	ErrAIServerOverloaded: {"サーバーが混雑しています。しばらくお待ちいただいてから再度お試しください。", http.StatusServiceUnavailable},
	ErrAIEmptyResponse:    {"AI解析結果が取得できませんでした。もう一度お試しください。", http.StatusBadGateway},
	ErrAIParseFailed:      {"AI解析結果の処理に失敗しました。もう一度お試しください。", http.StatusBadGateway},

	ErrBarcodeProductNotFound: {"商品が見つかりませんでした。手動で入力してください。", http.StatusNotFound},
	ErrBarcodeScanFailed:      {"バーコードの読み取りに失敗しました。再度スキャンしてください。", http.StatusInternalServerError},
	ErrBarcodeNotProvided:     {"バーコードが指定されていません。", http.StatusBadRequest},

	ErrSummaryGetFailed:    {"データの読み込みに失敗しました。時間をおいて再度お試しください。", http.StatusInternalServerError},
	ErrSummaryUpdateFailed: {"データの更新に失敗しました。時間をおいて再度お試しください。", http.StatusInternalServerError},

	ErrInputRequired: {"必要な情報が入力されていません。入力内容を確認してください。", http.StatusBadRequest},
	ErrInputInvalid:  {"入力内容に問題があります。入力内容を確認してください。", http.StatusBadRequest},

	ErrServer: {"予期しないエラーが発生しました。時間をおいて再度お試しください。", http.StatusInternalServerError},
}

// Message returns the user-facing message for code. Unknown codes get the
// generic server message.
func Message(code ErrorCode) string {
	if s, ok := errorTable[code]; ok {
		return s.message
	}
	return errorTable[ErrServer].message
}

// HTTPStatus returns the status an API handler should answer with for code.
func HTTPStatus(code ErrorCode) int {
	if s, ok := errorTable[code]; ok {
		return s.status
	}
	return http.StatusInternalServerError
}

// AppError is a classified failure. Cause holds the raw upstream error and is
// only exposed to clients outside production.
type AppError struct {
	Code  ErrorCode
	Cause error
}

func NewAppError(code ErrorCode, cause error) *AppError {
	return &AppError{Code: code, Cause: cause}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, Message(e.Code), e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, Message(e.Code))
}

func (e *AppError) Unwrap() error { return e.Cause }

func (e *AppError) Status() int { return HTTPStatus(e.Code) }

// AsAppError classifies err. Anything not already classified becomes SERVER_ERROR.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return NewAppError(ErrServer, err)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}

// ErrorBody is the JSON shape of every failed API response.
type ErrorBody struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	ErrorCode ErrorCode `json:"errorCode"`
	Details   string    `json:"details,omitempty"`
}

// ErrorResponse builds the API error body for err. Upstream detail is attached
// only when includeDetails is set (development builds).
func ErrorResponse(err error, includeDetails bool) ErrorBody {
	ae := AsAppError(err)
	if ae == nil {
		ae = NewAppError(ErrServer, nil)
	}
	body := ErrorBody{
		Success:   false,
		Error:     Message(ae.Code),
		ErrorCode: ae.Code,
	}
	if includeDetails && ae.Cause != nil {
		body.Details = ae.Cause.Error()
	}
	return body
}
