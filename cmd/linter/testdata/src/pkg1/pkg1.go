package pkg

import (
	"log"
	"os"
)

func FuncWithPanic() {
	panic("collector state corrupted") // want "use of builtin panic is discouraged"
}

func FuncWithFatal() {
	log.Fatal("outside main.main") // want "call to log.Fatal or os.Exit outside main.main"
}

func FuncWithExit() {
	os.Exit(1) // want "call to log.Fatal or os.Exit outside main.main"
}

func FuncAllowed() {
	log.Println("ok")
}

type shadow struct{}

func (shadow) Exit(int) {}

func FuncShadowed() {
	var os shadow
	os.Exit(2)
}
