package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	quotedoc "github.com/alnah/go-quotedoc"
	"github.com/alnah/go-quotedoc/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput       = errors.New("usage: quotedoc export <document.json>")
	ErrReadDocument  = errors.New("failed to read document file")
	ErrWriteArtifact = errors.New("failed to write artifact")
)

// runExport exports one document file to PDF or PNG.
func runExport(args []string, log *logrus.Logger) error {
	flags, fs, err := parseExportFlags("export", args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return ErrNoInput
	}

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}

	doc, err := readDocument(fs.Arg(0))
	if err != nil {
		return err
	}

	exp, err := newExporter(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := exp.Close(); cerr != nil {
			log.WithError(cerr).Warn("closing exporter")
		}
	}()

	artifact, err := exp.Export(context.Background(), doc, quotedoc.Format(flags.format))
	if err != nil {
		return err
	}

	outDir := flags.outDir
	if outDir == "" {
		outDir = cfg.Output.DefaultDir
	}
	if outDir == "" {
		outDir = "."
	}

	outPath := filepath.Join(outDir, artifact.Filename)
	if err := os.WriteFile(outPath, artifact.Data, 0o644); err != nil { //nolint:gosec // exported artifact
		return fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}

	log.WithFields(logrus.Fields{"path": outPath, "bytes": len(artifact.Data)}).Info("exported")
	fmt.Printf("Created %s\n", outPath)
	return nil
}

// runPreview renders the preview surface and writes its HTML to stdout.
func runPreview(args []string, log *logrus.Logger) error {
	flags, fs, err := parseExportFlags("preview", args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return ErrNoInput
	}

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}

	doc, err := readDocument(fs.Arg(0))
	if err != nil {
		return err
	}

	exp, err := newExporter(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = exp.Close() }()

	surface, err := exp.Preview(context.Background(), doc)
	if err != nil {
		return err
	}
	fmt.Print(surface.HTML)
	return nil
}

// readDocument loads a document from a JSON file.
func readDocument(path string) (*quotedoc.Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadDocument, err)
	}
	var doc quotedoc.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadDocument, err)
	}
	return &doc, nil
}

// newExporter builds an Exporter from config.
func newExporter(cfg config.Config, log *logrus.Logger) (*quotedoc.Exporter, error) {
	opts := []quotedoc.Option{
		quotedoc.WithCompany(quotedoc.Company{
			Name:        cfg.Company.Name,
			Address:     cfg.Company.Address,
			Phone:       cfg.Company.Phone,
			Email:       cfg.Company.Email,
			TaxID:       cfg.Company.TaxID,
			BankAccount: cfg.Company.BankAccount,
			LogoPath:    cfg.Company.LogoPath,
		}),
		quotedoc.WithRasterOptions(quotedoc.RasterOptions{
			Scale:            cfg.Raster.Scale,
			TargetPixelWidth: cfg.Raster.PixelWidth,
			SettleDelay:      time.Duration(cfg.Raster.SettleDelayMS) * time.Millisecond,
		}),
		quotedoc.WithLogger(log),
	}
	if cfg.Raster.TimeoutSec > 0 {
		opts = append(opts, quotedoc.WithTimeout(time.Duration(cfg.Raster.TimeoutSec)*time.Second))
	}
	return quotedoc.NewExporter(opts...)
}
