package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

const usage = `quotedoc - export quotes and contracts as PDF or PNG

Usage:
  quotedoc export <document.json> [flags]   Export a document
  quotedoc preview <document.json> [flags]  Render the preview HTML to stdout
  quotedoc serve [flags]                    Run the HTTP server
  quotedoc version                          Print version

Run 'quotedoc <command> --help' for command flags.`

func main() {
	log := newLogger()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(log.Debugf))

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(ExitUsage)
	}

	var err error
	switch os.Args[1] {
	case "export":
		err = runExport(os.Args[2:], log)
	case "preview":
		err = runPreview(os.Args[2:], log)
	case "serve":
		err = runServe(os.Args[2:], log)
	case "version":
		fmt.Println(Version)
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(ExitUsage)
	}

	if err != nil {
		log.Error(err.Error())
		os.Exit(exitCodeFor(err))
	}
}

// newLogger builds the process logger. JSON output, level from QUOTEDOC_LOG.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(os.Getenv("QUOTEDOC_LOG"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
