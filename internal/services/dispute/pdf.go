package dispute

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"hospital-finder/internal/apperr"
)

// TextExtractor returns the plain text of a document on disk.
type TextExtractor func(path string) (string, error)

// ExtractPDFText concatenates the plain text of every page, each followed by
// a newline. Pages without extractable text contribute nothing. Files that
// cannot be opened or parsed yield a Document error.
func ExtractPDFText(path string) (text string, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = apperr.Document("Unreadable PDF", fmt.Errorf("%v", r))
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", apperr.Document("Unreadable PDF", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Int("page", i).Msg("Skipping page without extractable text")
			continue
		}
		if pageText == "" {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	return b.String(), nil
}
