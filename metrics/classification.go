package metrics

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tourney/pkg/errors"
)

// Accuracy は正解率（一致した要素の割合）を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionMatrix は実際のクラス（行）と予測クラス（列）の件数を保持する
type ConfusionMatrix struct {
	labels []string
	counts *mat.Dense
}

// NewConfusionMatrix はクラスラベルに対する空の混同行列を作成する
func NewConfusionMatrix(labels []string) *ConfusionMatrix {
	k := max(len(labels), 1)
	return &ConfusionMatrix{
		labels: append([]string(nil), labels...),
		counts: mat.NewDense(k, k, nil),
	}
}

// Labels はクラスラベルを返す
func (cm *ConfusionMatrix) Labels() []string {
	return cm.labels
}

// Add は (実際, 予測) の組を1件記録する
func (cm *ConfusionMatrix) Add(actual, predicted int) error {
	k := len(cm.labels)
	if actual < 0 || actual >= k || predicted < 0 || predicted >= k {
		return errors.NewValueError("ConfusionMatrix.Add",
			fmt.Sprintf("class pair (%d, %d) outside %d classes", actual, predicted, k))
	}
	cm.counts.Set(actual, predicted, cm.counts.At(actual, predicted)+1)
	return nil
}

// Merge は other の件数を加算する
func (cm *ConfusionMatrix) Merge(other *ConfusionMatrix) error {
	if len(other.labels) != len(cm.labels) {
		return errors.NewDimensionError("ConfusionMatrix.Merge", len(cm.labels), len(other.labels), 0)
	}
	cm.counts.Add(cm.counts, other.counts)
	return nil
}

// Count は実際のクラスが actual で predicted と予測された件数を返す
func (cm *ConfusionMatrix) Count(actual, predicted int) int {
	return int(cm.counts.At(actual, predicted))
}

// Total は記録された件数の合計を返す
func (cm *ConfusionMatrix) Total() int {
	return int(mat.Sum(cm.counts))
}

// Correct は対角成分の合計（正解数）を返す
func (cm *ConfusionMatrix) Correct() int {
	return int(mat.Trace(cm.counts))
}

// Accuracy は正解率を返す。件数が0の場合は0
func (cm *ConfusionMatrix) Accuracy() float64 {
	return errors.SafeDivide(float64(cm.Correct()), float64(cm.Total()))
}

// Precision はクラス c の適合率を返す。c と予測された件数が0の場合は
// UndefinedMetricWarning を出して0を返す
func (cm *ConfusionMatrix) Precision(c int) float64 {
	predicted := mat.Sum(cm.counts.ColView(c))
	if predicted == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted samples for "+cm.labels[c], 0))
		return 0
	}
	return cm.counts.At(c, c) / predicted
}

// Recall はクラス c の再現率を返す。c の実例が0の場合は
// UndefinedMetricWarning を出して0を返す
func (cm *ConfusionMatrix) Recall(c int) float64 {
	actual := mat.Sum(cm.counts.RowView(c))
	if actual == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no true samples for "+cm.labels[c], 0))
		return 0
	}
	return cm.counts.At(c, c) / actual
}

// F1 はクラス c の適合率と再現率の調和平均を返す
func (cm *ConfusionMatrix) F1(c int) float64 {
	p, r := cm.Precision(c), cm.Recall(c)
	return errors.SafeDivide(2*p*r, p+r)
}

// String は Weka 風の混同行列表示を返す
//
//	  a  b   <-- classified as
//	  9  0 |  a = yes
//	  1  4 |  b = no
func (cm *ConfusionMatrix) String() string {
	var b strings.Builder
	k := len(cm.labels)
	for j := 0; j < k; j++ {
		fmt.Fprintf(&b, "%4s", columnName(j))
	}
	b.WriteString("   <-- classified as\n")
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			fmt.Fprintf(&b, "%4d", cm.Count(i, j))
		}
		fmt.Fprintf(&b, " | %4s = %s\n", columnName(i), cm.labels[i])
	}
	return b.String()
}

// columnName は 0→a, 25→z, 26→aa ... のように列名を返す
func columnName(i int) string {
	name := ""
	for {
		name = string(rune('a'+i%26)) + name
		i = i/26 - 1
		if i < 0 {
			return name
		}
	}
}
