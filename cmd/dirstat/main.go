package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/justyntemme/dirstat/internal/app"
	"github.com/justyntemme/dirstat/internal/config"
)

func main() {
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	resetConfig := flag.Bool("reset-config", false, "Back up the config file, write the defaults and exit")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: dirstat [-debug] [-reset-config] [directory | pkg:/pattern]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *resetConfig {
		path := config.ConfigPath()
		backup, err := config.GenerateConfig(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "dirstat:", err)
			os.Exit(1)
		}
		if backup != "" {
			fmt.Println("Old config saved as", backup)
		}
		fmt.Println("Default config written to", path)
		return
	}

	manageConsole(*debug)

	// Optional start location, read right away
	app.Main(*debug, flag.Arg(0))
}
