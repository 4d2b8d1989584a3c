package main

import (
	"log"
	"os"

	"github.com/viant/duplex/cli"
)

func main() {
	if err := cli.RunCall(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
