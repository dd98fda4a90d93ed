package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/extractors"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
)

func main() {
	tolerance := flag.Float64("line-tolerance", extractors.DefaultLineTolerance, "vertical band for line grouping, in points")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: extract_words [-line-tolerance pt] <pdf_file> [page]")
		os.Exit(1)
	}

	pdfPath := flag.Arg(0)
	only := 0
	if flag.NArg() > 1 {
		if _, err := fmt.Sscanf(flag.Arg(1), "%d", &only); err != nil || only < 1 {
			log.Fatalf("Invalid page number %q", flag.Arg(1))
		}
	}

	fmt.Printf("Opening PDF: %s\n", pdfPath)
	doc, err := pdf.Open(pdfPath)
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()

	fmt.Printf("Document has %d pages\n\n", doc.PageCount())

	extractor := extractors.NewTextExtractor(extractors.WithLineTolerance(*tolerance))
	for i := 0; i < doc.PageCount(); i++ {
		if only > 0 && i+1 != only {
			continue
		}
		page, err := doc.GetPage(i)
		if err != nil {
			log.Printf("Failed to get page %d: %v", i+1, err)
			continue
		}

		fmt.Printf("=== Page %d ===\n", page.GetPageNumber())
		fmt.Printf("Size: %.2f x %.2f\n", page.GetWidth(), page.GetHeight())

		lines, err := extractor.Extract(page)
		if err != nil {
			log.Printf("Failed to extract words from page %d: %v", i+1, err)
			continue
		}
		if lines.Len() == 0 {
			fmt.Println("No text found on this page")
		}

		// line key, bottom edge of the line box, then the words
		for _, line := range lines.Lines() {
			b := line.BBox()
			fmt.Printf("%6d  y1=%7.2f  %s\n", line.Key, b.Y1, line.Text())
		}
		fmt.Println()
	}
}
