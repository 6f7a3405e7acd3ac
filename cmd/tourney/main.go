// Command tourney loads an ARFF dataset, runs the classifier tournament on
// it and classifies new instances with the winner.
//
//	tourney run --chart accuracy.png --value 5.1 --value 3.5 --value 1.4 --value 0.2 iris.arff
//	tourney attributes iris.arff
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
