package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return paragraphText(doc.Editable().GetContent())
}

// paragraphText walks word/document.xml and joins w:p text with newlines.
// Only w:t character data is kept; w:tab and w:br inside a run map to tab
// and newline (tab stops in paragraph properties are not text). Paragraphs
// nested in text boxes are emitted when they close and the enclosing
// paragraph keeps collecting afterwards.
func paragraphText(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))

	var (
		paragraphs []string
		open       []*strings.Builder
		runDepth   int
		inText     bool
	)
	current := func() *strings.Builder {
		if len(open) == 0 {
			return nil
		}
		return open[len(open)-1]
	}
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "r":
				runDepth++
			case "t":
				inText = true
			case "tab":
				if b := current(); b != nil && runDepth > 0 {
					b.WriteString("\t")
				}
			case "br", "cr":
				if b := current(); b != nil && runDepth > 0 {
					b.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				if runDepth > 0 {
					runDepth--
				}
			case "t":
				inText = false
			case "p":
				if b := current(); b != nil {
					paragraphs = append(paragraphs, b.String())
					open = open[:len(open)-1]
				}
			}
		case xml.CharData:
			if b := current(); b != nil && inText {
				b.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}
