// Command staticlint запускает анализатор nocrash.
package main

import (
	"github.com/RoGogDBD/vitals-monitor/cmd/linter"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(linter.Analyzer)
}
