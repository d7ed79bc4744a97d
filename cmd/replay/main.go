package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tunesmith-ml/tunesmith/go-controller/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	verbose := flag.Bool("verbose", false, "print every step decision")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--verbose]")
		os.Exit(2)
	}

	os.Exit(runFixture(*fixturePath, *verbose))
}

// #endregion main

// #region fixture-mode

func runFixture(path string, verbose bool) int {
	fixture, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if fixture.Description != "" {
		fmt.Printf("fixture: %s\n", fixture.Description)
	}

	summary, err := replay.Replay(fixture)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if verbose {
		for _, res := range summary.Results {
			mark := " "
			if res.Evaluated {
				mark = "*"
			}
			fmt.Printf("  %s step %6d  percent %3d\n", mark, res.Step, res.Percent)
		}
	}

	fmt.Printf("steps: %d, evaluations: %d\n", summary.TotalSteps, summary.Evaluated)
	if !summary.Passed() {
		for _, m := range summary.Mismatches {
			fmt.Printf("MISMATCH: %s\n", m)
		}
		fmt.Println("FAIL")
		return 1
	}
	fmt.Println("PASS")
	return 0
}

// #endregion fixture-mode
