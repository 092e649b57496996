package main

import (
	"log"
	"os"

	"github.com/TFMV/lazywalk/cmd"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("lazywalk: ")

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v", r)
			os.Exit(1)
		}
	}()

	// cobra has already printed the error.
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
