// Command souffle is a Datalog compiler and evaluator.
package main

import "github.com/souffle-lang/souffle-sub001/pkg/cmd"

func main() {
	cmd.Execute()
}
