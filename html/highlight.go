package html

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	hlhtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlight returns the HTML of every line of code, coloured with CSS classes.
func highlight(language string, code string, styleName string) ([]string, error) {
	l := lexers.Get(language)
	if l == nil {
		l = lexers.Analyse(code)
	}
	if l == nil {
		l = lexers.Fallback
	}
	l = chroma.Coalesce(l)

	it, err := l.Tokenise(nil, code)
	if err != nil {
		return nil, err
	}

	s := styles.Get(styleName)
	f := hlhtml.New(hlhtml.WithClasses(true), hlhtml.PreventSurroundingPre(true))

	var result []string
	for _, line := range chroma.SplitTokensIntoLines(it.Tokens()) {
		// The lines are joined by the template
		for i := range line {
			line[i].Value = strings.TrimSuffix(line[i].Value, "\n")
		}

		var buf bytes.Buffer
		if err := f.Format(&buf, s, chroma.Literator(line...)); err != nil {
			return nil, err
		}
		result = append(result, buf.String())
	}

	return result, nil
}
