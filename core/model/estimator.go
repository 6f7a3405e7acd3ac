package model

import "gonum.org/v1/gonum/mat"

// Fitter は行列形式の訓練データで学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる。y は n×1 のクラスインデックス列
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う。戻り値は n×1 のクラスインデックス列
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// MatrixEstimator は数値属性のみを扱う分類器のインターフェース
// （ロジスティック回帰、k近傍法、SVM、多層パーセプトロン）
type MatrixEstimator interface {
	Fitter
	Predictor
}
