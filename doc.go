// Package tourney runs a classifier tournament: it cross-validates a fixed
// set of classification pipelines on one tabular dataset, selects the most
// accurate one, and classifies new instances with it.
//
// # Quick Start
//
// The engine package is the entry point:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/tourney/engine"
//	)
//
//	func main() {
//	    e := engine.New()
//	    if _, _, err := e.Load("iris.arff"); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    results, err := e.RunTournament()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, r := range results {
//	        fmt.Println(r) // NaiveBayes (Discretized) | Correct: 141 | Acc: 94.00%
//	    }
//
//	    fmt.Println(e.Predict([]string{"5.1", "3.5", "1.4", "0.2"}))
//	}
//
// # Packages
//
//   - dataset: attribute schema, instances and the ARFF loader
//   - preprocessing: Normalize, Discretize and NominalToBinary filters
//   - pipeline: filters chained in front of a base algorithm
//   - sklearn/...: the base algorithms (naive Bayes, logistic regression,
//     k-nearest neighbours, decision trees, SVM, multilayer perceptron)
//   - model_selection: stratified k-fold cross-validation
//   - metrics: accuracy and confusion matrices
//   - tournament: the candidate registry, the runner and winner selection
//   - prediction: raw input encoding and label decoding
//   - engine: the facade used by the command line tool
//   - report: results table and accuracy chart
//   - core/model: the Classifier contract and the matrix adapter
//   - core/parallel: parallel processing utilities
//
// # Determinism
//
// Fold assignment and every randomized learner are seeded (seed 1 by
// default), so repeated tournaments on the same data report identical
// accuracies regardless of parallelism.
//
// # Command line
//
//	tourney run --value 5.1 --value 3.5 --value 1.4 --value 0.2 iris.arff
package tourney
