package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/dataset"
	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// Normalize は数値属性を学習データの最小値・最大値で [0,1] にスケーリングするフィルタ
//
// 変換式: (v - min) / (max - min) * Scale + Translation
//
// 学習データで定数だった属性は常に 0 に写像される。学習範囲外の値はクリップしない。
// カテゴリ属性とクラス属性は変更しない。
type Normalize struct {
	state *model.StateManager

	// Scale は変換後の幅 (デフォルト: 1)
	Scale float64

	// Translation は変換後の下限 (デフォルト: 0)
	Translation float64

	schema  dataset.Schema
	dataMin []float64
	dataMax []float64
}

// NormalizeOption is a functional option for Normalize
type NormalizeOption func(*Normalize)

// WithNormalizeRange sets the output range to [translation, translation+scale].
func WithNormalizeRange(scale, translation float64) NormalizeOption {
	return func(n *Normalize) {
		n.Scale = scale
		n.Translation = translation
	}
}

// NewNormalize は新しいNormalizeフィルタを作成する
//
// 使用例:
//
//	norm := preprocessing.NewNormalize()
//	err := norm.Fit(train)
//	scaled, err := norm.ApplyDataset(test)
func NewNormalize(opts ...NormalizeOption) *Normalize {
	n := &Normalize{
		state: model.NewStateManager(),
		Scale: 1.0,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Fit は訓練データから各数値属性の最小値・最大値を計算する
func (n *Normalize) Fit(d *dataset.Dataset) error {
	n.state.Reset()
	if err := checkFitInput("Normalize.Fit", d); err != nil {
		return err
	}

	c := d.NumAttributes()
	n.schema = d.Schema
	n.dataMin = make([]float64, c)
	n.dataMax = make([]float64, c)

	for j := 0; j < d.ClassIndex(); j++ {
		if d.Schema[j].IsNominal() {
			continue
		}
		min, max := d.Rows[0][j], d.Rows[0][j]
		for _, row := range d.Rows[1:] {
			v := row[j]
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		n.dataMin[j] = min
		n.dataMax[j] = max
	}

	n.state.SetDimensions(c, d.InstanceCount())
	n.state.SetFitted()
	return nil
}

// OutputSchema は入力と同じスキーマを返す
func (n *Normalize) OutputSchema() dataset.Schema {
	return n.schema
}

// Apply は学習済みの最小値・最大値を使って1インスタンスをスケーリングする
func (n *Normalize) Apply(inst dataset.Instance) (dataset.Instance, error) {
	if err := n.state.RequireFitted("Normalize", "Apply"); err != nil {
		return nil, err
	}
	if err := checkWidth("Normalize.Apply", n.schema, inst); err != nil {
		return nil, err
	}

	out := inst.Clone()
	for j := 0; j < n.schema.ClassIndex(); j++ {
		if n.schema[j].IsNominal() || dataset.IsMissing(out[j]) {
			continue
		}
		dataRange := n.dataMax[j] - n.dataMin[j]
		if dataRange == 0 {
			out[j] = 0
			continue
		}
		out[j] = (out[j]-n.dataMin[j])/dataRange*n.Scale + n.Translation
	}
	return out, nil
}

// ApplyDataset は全行をスケーリングした新しいデータセットを返す
func (n *Normalize) ApplyDataset(d *dataset.Dataset) (*dataset.Dataset, error) {
	if err := n.state.RequireFitted("Normalize", "ApplyDataset"); err != nil {
		return nil, err
	}
	return applyDataset(n, d)
}

// Range returns the learned minimum and maximum of attribute j.
func (n *Normalize) Range(j int) (float64, float64, error) {
	if err := n.state.RequireFitted("Normalize", "Range"); err != nil {
		return 0, 0, err
	}
	if j < 0 || j >= len(n.dataMin) {
		return 0, 0, errors.NewValueError("Normalize.Range", fmt.Sprintf("attribute index %d out of range", j))
	}
	return n.dataMin[j], n.dataMax[j], nil
}

// GetParams はフィルタのパラメータを取得する
func (n *Normalize) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"scale":       n.Scale,
		"translation": n.Translation,
	}
}

// String はフィルタの文字列表現を返す
func (n *Normalize) String() string {
	return fmt.Sprintf("Normalize(scale=%g, translation=%g)", n.Scale, n.Translation)
}
