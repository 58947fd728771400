// Package quotedoc generates printable PDF and PNG artifacts from business
// documents (proforma/commercial invoices, quotations, and domestic sales
// contracts) using headless Chrome.
//
// # Quick Start
//
// Create an exporter, export a document, and close when done:
//
//	exp, err := quotedoc.NewExporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exp.Close()
//
//	artifact, err := exp.Export(ctx, doc, quotedoc.FormatPDF)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(artifact.Filename, artifact.Data, 0644)
//
// # Export Pipeline
//
// Export runs these stages:
//
//  1. Snapshot the document (deep copy, isolates the export from later edits)
//  2. Render the document into an HTML surface (html/template, Goldmark notes)
//  3. Rasterize the surface with headless Chrome (go-rod) at a fixed pixel width
//  4. Paginate the tall bitmap into A4-sized bands
//  5. Assemble the final artifact (gofpdf pages or a single PNG)
//
// Only one export runs at a time per Exporter; a second call while one is in
// flight fails fast with ErrExportInFlight.
//
// # Configuration
//
// Use functional options to customize the exporter:
//
//	exp, err := quotedoc.NewExporter(
//	    quotedoc.WithTimeout(2 * time.Minute),
//	    quotedoc.WithCompany(profile),
//	    quotedoc.WithPageFormat(quotedoc.A4),
//	)
package quotedoc
