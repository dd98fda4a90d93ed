package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/annotate"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/compare"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/extractors"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/raster"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/textdiff"
)

func main() {
	scale := flag.Float64("scale", 4.0, "render scale")
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Println("Usage: benchmark [-scale n] <old.pdf> <new.pdf>")
		os.Exit(1)
	}
	oldPath, newPath := flag.Arg(0), flag.Arg(1)

	// Benchmark opening
	start := time.Now()
	oldDoc, err := pdf.Open(oldPath)
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	defer oldDoc.Close()
	newDoc, err := pdf.Open(newPath)
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	defer newDoc.Close()
	openTime := time.Since(start)

	renderer, err := raster.NewRenderer(*scale)
	if err != nil {
		log.Fatal(err)
	}
	layout, err := annotate.NewLayout(*scale, compare.DefaultOptions().LabelFontSize**scale)
	if err != nil {
		log.Fatal(err)
	}
	extractor := extractors.NewTextExtractor()
	differ := textdiff.NewDiffer()
	opts := compare.DefaultOptions()

	pages := min(oldDoc.PageCount(), newDoc.PageCount())
	fmt.Printf("=== pdfdiff Benchmark ===\n")
	fmt.Printf("Files: %s vs %s\n", oldPath, newPath)
	fmt.Printf("Common pages: %d\n", pages)
	fmt.Printf("Open time: %v\n", openTime)

	var renderTime, diffTime, textTime, layoutTime time.Duration
	var diffPixels, ops int
	for i := 0; i < pages; i++ {
		oldPage, err := oldDoc.GetPage(i)
		if err != nil {
			continue
		}
		newPage, err := newDoc.GetPage(i)
		if err != nil {
			continue
		}

		start = time.Now()
		a, errA := renderer.Render(oldPage)
		b, errB := renderer.Render(newPage)
		renderTime += time.Since(start)
		if errA == nil && errB == nil {
			start = time.Now()
			mask, err := raster.Diff(a, b)
			if err == nil {
				diffPixels += mask.Count()
				raster.Composite(a, raster.Overlay(mask, opts.Tint, opts.Opacity))
			}
			diffTime += time.Since(start)
		}

		start = time.Now()
		oldLines, errA := extractor.Extract(oldPage)
		newLines, errB := extractor.Extract(newPage)
		var pageOps []textdiff.DiffOp
		if errA == nil && errB == nil {
			pageOps = differ.Diff(oldLines, newLines)
		}
		textTime += time.Since(start)
		ops += len(pageOps)

		start = time.Now()
		layout.Layout(pageOps)
		layoutTime += time.Since(start)
	}

	fmt.Printf("Render time: %v\n", renderTime)
	fmt.Printf("Pixel diff time: %v (%d differing pixels)\n", diffTime, diffPixels)
	fmt.Printf("Text diff time: %v (%d word changes)\n", textTime, ops)
	fmt.Printf("Layout time: %v\n", layoutTime)

	// Summary
	totalTime := openTime + renderTime + diffTime + textTime + layoutTime
	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Total processing time: %v\n", totalTime)
	fmt.Printf("Pages/sec: %.2f\n", float64(pages)/totalTime.Seconds())
}
