// Command quackc compiles a single source file to a native executable,
// per spec §6: `quackc <source-file> [-o out] [-c config.yaml] [-keep-c]`.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/alexanderowen/quackc/internal/cache"
	"github.com/alexanderowen/quackc/internal/config"
	"github.com/alexanderowen/quackc/internal/driver"
)

const usage = "usage: quackc <source-file> [-o out] [-c config.yaml] [-keep-c]"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, usage)
		return driver.ExitFailure
	}
	sourcePath := args[0]

	outputPath := ""
	configPath := ".quackc.yaml"
	keepC := false
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, usage)
				return driver.ExitFailure
			}
			outputPath = args[i+1]
			i++
		case "-c":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, usage)
				return driver.ExitFailure
			}
			configPath = args[i+1]
			i++
		case "-keep-c":
			keepC = true
		default:
			fmt.Fprintln(os.Stderr, usage)
			return driver.ExitFailure
		}
	}

	if _, err := os.Stat(sourcePath); err != nil {
		reportf("%v", err)
		return driver.ExitFailure
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		reportf("reading %s: %v", configPath, err)
		return driver.ExitFailure
	}
	if outputPath != "" {
		cfg.OutputBinary = outputPath
	}
	if keepC {
		cfg.KeepGeneratedC = true
	}

	var ch *cache.Cache
	if cfg.CacheDB != "" {
		ch, err = cache.Open(cfg.CacheDB)
		if err != nil {
			reportf("opening compile cache: %v", err)
			return driver.ExitFailure
		}
		defer ch.Close()
	}

	d := driver.New(cfg, ch)
	return d.Compile(sourcePath)
}

// reportf writes a diagnostic-free failure (I/O, config) to stderr. When
// stderr is a terminal the message is dimmed, matching how an interactive
// build tool keeps incidental noise visually distinct from the compiled
// program's own output.
func reportf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "\x1b[2mquackc: %s\x1b[0m\n", msg)
		return
	}
	fmt.Fprintf(os.Stderr, "quackc: %s\n", msg)
}
