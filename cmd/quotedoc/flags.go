package main

import (
	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config string
}

// exportFlags holds flags for the export command.
type exportFlags struct {
	commonFlags
	format string
	outDir string
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	commonFlags
	addr string
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "path to YAML config file")
}

// parseExportFlags parses args for export/preview. Returns the flag set for
// positional access.
func parseExportFlags(name string, args []string) (*exportFlags, *flag.FlagSet, error) {
	f := &exportFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	addCommonFlags(fs, &f.commonFlags)
	fs.StringVarP(&f.format, "format", "f", "pdf", "output format: pdf or png")
	fs.StringVarP(&f.outDir, "out", "o", "", "output directory (default: config output.defaultDir or .)")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

// parseServeFlags parses args for serve.
func parseServeFlags(args []string) (*serveFlags, error) {
	f := &serveFlags{}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addCommonFlags(fs, &f.commonFlags)
	fs.StringVar(&f.addr, "addr", "", "listen address (default: config server.addr or :8080)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
