package log

// Model and operation context.
const (
	// ModelNameKey identifies the classifier type, e.g. "J48" or "IBk".
	ModelNameKey = "model.name"

	// CandidateKey is the display name of a tournament candidate,
	// e.g. "IBk (k=3, Norm+Nom2Bin)".
	CandidateKey = "tournament.candidate"

	// RunIDKey correlates every record emitted by one tournament run.
	RunIDKey = "tournament.run_id"

	// OperationKey specifies the operation being performed.
	// Standard values: "load", "fit", "classify", "evaluate", "predict"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the tournament lifecycle.
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey    = "data.samples"
	AttributesKey = "data.attributes"
	ClassesKey    = "data.classes"
	RelationKey   = "data.relation"
	SourceKey     = "data.source"
	LineKey       = "data.line"
)

// Evaluation and training progress.
const (
	DurationMsKey = "perf.duration_ms"
	FoldKey       = "cv.fold"
	FoldsKey      = "cv.folds"
	CorrectKey    = "metrics.correct"
	AccuracyKey   = "metrics.accuracy"
	LossKey       = "metrics.loss"
	IterationKey  = "training.iteration"
	EpochKey      = "training.epoch"
)

// Error context.
const (
	// ErrorTypeKey categorizes the error, e.g. "CandidateFailure".
	ErrorTypeKey = "error.type"

	// SuggestionKey provides a hint for resolving the issue.
	SuggestionKey = "error.suggestion"
)

// Configuration and execution.
const (
	RandomSeedKey  = "config.random_seed"
	ParallelismKey = "config.parallelism"
	WorkerIDKey    = "infra.worker_id"
)

// Standard attribute values.
const (
	OperationLoad     = "load"
	OperationFit      = "fit"
	OperationClassify = "classify"
	OperationFilter   = "filter"
	OperationEvaluate = "evaluate"
	OperationPredict  = "predict"

	PhaseEvaluation = "evaluation"
	PhaseRetrain    = "retrain"
	PhaseSelection  = "selection"
	PhaseInference  = "inference"
)
