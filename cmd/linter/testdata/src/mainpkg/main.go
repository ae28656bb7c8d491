package main

import (
	"log"
	"os"
)

func main() {
	if len(os.Args) > 3 {
		os.Exit(2)
	}
	log.Fatal("allowed in main.main")
}

func helper() {
	os.Exit(1) // want "call to log.Fatal or os.Exit outside main.main"
}

type runner struct{}

func (runner) main() {
	log.Fatalf("method main is not main.main") // want "call to log.Fatal or os.Exit outside main.main"
}
