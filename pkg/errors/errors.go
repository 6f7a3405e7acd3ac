// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// データセットの読み込み、トーナメント実行、予測の各段階で発生するエラーを
// 呼び出し側が errors.As で区別できる構造化された型として提供します。
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("tourney-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// ConvergenceWarning や候補の失敗通知の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ConvergenceWarning は反復最適化が収束しなかった場合に発生する警告です。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// UndefinedMetricWarning は評価指標が計算できない場合に発生する警告です。
// 例えば、適合率を計算する際にあるクラスの予測が一つもなかった場合など。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	エンジン境界のエラー型
//
// ===========================================================================

// FormatError はデータセットファイルを期待する表形式として解析できない場合のエラーです。
// 属性が一つも宣言されていないファイルもこのエラーになります。
type FormatError struct {
	Source string // ファイルパスまたは "<reader>"
	Line   int    // 0 の場合は行に依存しないエラー
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("tourney: format error in %s at line %d: %s", e.Source, e.Line, e.Reason)
	}
	return fmt.Sprintf("tourney: format error in %s: %s", e.Source, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *FormatError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("source", e.Source).
		Int("line", e.Line).
		Str("reason", e.Reason).
		Str("type", "FormatError")
}

// NewFormatError は新しいFormatErrorを作成し、スタックトレースを付与します。
func NewFormatError(source string, line int, reason string) error {
	return errors.WithStack(&FormatError{Source: source, Line: line, Reason: reason})
}

// NoDataError はデータセットが読み込まれていない、または空の状態で処理を要求された場合のエラーです。
type NoDataError struct {
	Op string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("tourney: %s: no data loaded", e.Op)
}

// NewNoDataError は新しいNoDataErrorを作成し、スタックトレースを付与します。
func NewNoDataError(op string) error {
	return errors.WithStack(&NoDataError{Op: op})
}

// CandidateFailure はトーナメントの一候補が学習または評価に失敗したことを表します。
// トーナメント自体は中断されず、スコア0の結果行に変換されます。
type CandidateFailure struct {
	Candidate string
	Err       error
}

func (e *CandidateFailure) Error() string {
	return fmt.Sprintf("tourney: candidate %q failed: %v", e.Candidate, e.Err)
}

func (e *CandidateFailure) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *CandidateFailure) MarshalZerologObject(event *zerolog.Event) {
	event.Str("candidate", e.Candidate).
		AnErr("cause", e.Err).
		Str("type", "CandidateFailure")
}

// NewCandidateFailure は新しいCandidateFailureを作成し、スタックトレースを付与します。
func NewCandidateFailure(candidate string, err error) error {
	return errors.WithStack(&CandidateFailure{Candidate: candidate, Err: err})
}

// NoModelError は学習済みの勝者モデルが存在しない状態で予測を要求された場合のエラーです。
type NoModelError struct{}

func (e *NoModelError) Error() string {
	return "No model trained yet."
}

// NewNoModelError は新しいNoModelErrorを作成し、スタックトレースを付与します。
func NewNoModelError() error {
	return errors.WithStack(&NoModelError{})
}

// UnknownCategoryError はカテゴリ属性の入力値が属性のドメインに存在しない場合のエラーです。
type UnknownCategoryError struct {
	Attribute string
	Value     string
	Domain    []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown value %q for attribute '%s' (expected one of {%s})",
		e.Value, e.Attribute, strings.Join(e.Domain, ", "))
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnknownCategoryError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("attribute", e.Attribute).
		Str("value", e.Value).
		Strs("domain", e.Domain).
		Str("type", "UnknownCategoryError")
}

// NewUnknownCategoryError は新しいUnknownCategoryErrorを作成し、スタックトレースを付与します。
func NewUnknownCategoryError(attribute, value string, domain []string) error {
	return errors.WithStack(&UnknownCategoryError{Attribute: attribute, Value: value, Domain: domain})
}

// InvalidNumberError は数値属性の入力値を数値として解釈できない場合のエラーです。
type InvalidNumberError struct {
	Attribute string
	Value     string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("invalid number %q for attribute '%s'", e.Value, e.Attribute)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidNumberError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("attribute", e.Attribute).
		Str("value", e.Value).
		Str("type", "InvalidNumberError")
}

// NewInvalidNumberError は新しいInvalidNumberErrorを作成し、スタックトレースを付与します。
func NewInvalidNumberError(attribute, value string) error {
	return errors.WithStack(&InvalidNumberError{Attribute: attribute, Value: value})
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Classify` や `Apply` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("tourney: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0: 行, 1: 列（属性）
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("tourney: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// CapabilityError は推定器が扱えない種類の属性やクラスを与えられた場合のエラーです。
// 例えば数値専用の分類器にカテゴリ属性を渡した場合など。
type CapabilityError struct {
	Estimator string
	Reason    string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("tourney: %s: cannot handle %s", e.Estimator, e.Reason)
}

// NewCapabilityError は新しいCapabilityErrorを作成し、スタックトレースを付与します。
func NewCapabilityError(estimator, reason string) error {
	return errors.WithStack(&CapabilityError{Estimator: estimator, Reason: reason})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tourney: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("tourney: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError は機械学習モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tourney: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("tourney: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf などを検出します。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "backprop", "smo_update"）
	Values    []float64 // 問題のある値
	Iteration int       // 発生したイテレーション番号
}

func (e *NumericalInstabilityError) Error() string {
	parts := make([]string, 0, len(e.Values))
	for i, v := range e.Values {
		if i >= 5 {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, fmt.Sprintf("%.6g", v))
	}
	return fmt.Sprintf("tourney: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, strings.Join(parts, ", "))
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")
)
