package main

import (
	"log"
	"os"

	"github.com/trezcool/rekodi/services/spreadsheet"
)

func main() {
	logger := log.New(os.Stderr, "CLI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	cli := commandLine{sheets: spreadsheet.Excel{}}
	if err := cli.run(os.Args[1:]); err != nil {
		logger.Printf("error: %s", err)
		os.Exit(1)
	}
}
