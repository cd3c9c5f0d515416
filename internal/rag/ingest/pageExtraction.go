package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/akolanti/newschat/internal/config"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// readPDFPages returns one rawPage per page with text. Pages that fail or time
// out are skipped so one broken page does not drop the document.
func readPDFPages(ctx context.Context, path string) ([]rawPage, error) {
	log := logger.WithTrace(ctx).With("file", filepath.Base(path))
	reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filepath.Base(path), err)
	}

	total := reader.NumPage()
	pages := make([]rawPage, 0, total)
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}

		text, err := pageText(ctx, page)
		if err != nil {
			log.Warn("Skipping page", "page", n, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, rawPage{Number: n, Content: text})
	}
	log.Debug("Read pdf", "pages", total, "withText", len(pages))
	return pages, nil
}

// readWholeFile covers .txt, .md, .docx, .rtf and .odt; the result is page 1.
func readWholeFile(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return []rawPage{{Number: 1, Content: text}}, nil
}

// pageText bounds a single page by PageExtractTimeout. The pdf reader panics on
// some malformed content streams, which is reported as an error.
func pageText(ctx context.Context, page pdf.Page) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.PageExtractTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	out := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				out <- result{err: fmt.Errorf("malformed page: %v", r)}
			}
		}()
		text, err := page.GetPlainText(nil)
		out <- result{text: text, err: err}
	}()

	select {
	case r := <-out:
		return r.text, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("page extraction: %w", ctx.Err())
	}
}
