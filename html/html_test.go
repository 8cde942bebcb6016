package html

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hesusruiz/mau/env"
	"github.com/hesusruiz/mau/parser"
	"github.com/hesusruiz/mau/templates"
	"github.com/hesusruiz/mau/visitor"
)

func renderString(t *testing.T, e *env.Environment, source string) string {
	t.Helper()

	Configure(e)
	set, err := templates.LoadSet(e)
	require.NoError(t, err)

	doc, err := parser.Parse(source, "test.mau", parser.WithEnvironment(e))
	require.NoError(t, err)

	emitter := NewEmitter(templates.NewRenderer(set, templates.WithEnvironment(e)), WithEnvironment(e))
	out, err := visitor.New(emitter, visitor.WithEnvironment(e)).Visit(doc)
	require.NoError(t, err)

	return out.(string)
}

func render(t *testing.T, source string) *goquery.Document {
	t.Helper()

	dom, err := goquery.NewDocumentFromReader(strings.NewReader(renderString(t, env.New(), source)))
	require.NoError(t, err)
	return dom
}

func TestConfigureKeepsUserValues(t *testing.T) {
	e := env.New()
	e.Set("mau.visitor.extension", "j2")
	Configure(e)

	assert.Equal(t, "j2", e.GetString("mau.visitor.extension", ""))
	assert.Equal(t, []string{ProviderName}, e.GetStrings("mau.visitor.template_providers"))
}

func TestEveryNodeTypeHasATemplate(t *testing.T) {
	fsys, ok := templates.Provider(ProviderName)
	require.True(t, ok)

	s := templates.NewSet()
	require.NoError(t, s.AddFS(fsys))

	for _, name := range []string{
		"document", "paragraph", "sentence", "text", "verbatim", "raw", "class", "macro",
		"macro.link", "macro.image", "macro.header", "header", "horizontal_rule", "list",
		"list_item", "block", "source", "content", "content_image", "footnote", "footnotes",
		"footnotes_entry", "reference", "references", "references_entry", "toc", "toc_entry",
	} {
		assert.True(t, s.Has(name+".html"), name)
	}
}

func TestRenderInline(t *testing.T) {
	dom := render(t, "Some *bold*, _italic_ and `a < b` with [link](https://example.com, Example)\n")

	assert.Equal(t, "bold", dom.Find("p strong").Text())
	assert.Equal(t, "italic", dom.Find("p em").Text())
	assert.Equal(t, "a < b", dom.Find("p code").Text())

	link := dom.Find("p a")
	href, _ := link.Attr("href")
	assert.Equal(t, "https://example.com", href)
	assert.Equal(t, "Example", link.Text())
}

func TestRenderEscapesText(t *testing.T) {
	out := renderString(t, env.New(), "x <script> y\n")

	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
}

func TestRenderHeadersAndToc(t *testing.T) {
	dom := render(t, "::toc:\n\n= Title\n\n== Sub\n\nSee [header](sub)\n")

	assert.Equal(t, "Title", dom.Find("h1#title").Text())
	assert.Equal(t, "Sub", dom.Find("h2#sub").Text())

	var targets []string
	dom.Find("nav.toc a").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		targets = append(targets, href)
	})
	assert.Equal(t, []string{"#title", "#sub"}, targets)
	assert.Equal(t, 1, dom.Find("nav.toc ul ul").Length())

	href, _ := dom.Find("p a").Attr("href")
	assert.Equal(t, "#sub", href)
}

func TestRenderSource(t *testing.T) {
	dom := render(t, `. Main
[source, go]
----
func main() {}:a:
x := 1
----
a: The entry point
`)

	code := dom.Find("div.source pre code.language-go")
	require.Equal(t, 1, code.Length())
	assert.Equal(t, 2, code.Find("span.codeline").Length())
	assert.Contains(t, code.Text(), "func main() {}")
	assert.Equal(t, "func", code.Find(".kd").First().Text())

	assert.Equal(t, "a", dom.Find("span.callout").Text())
	assert.Equal(t, "The entry point", dom.Find("table.callouts td").Last().Text())
	assert.Equal(t, "Main", dom.Find("div.source div.title").Text())
}

func TestRenderSourceEscapesMarkers(t *testing.T) {
	dom := render(t, `[source, text, classes="a\"b"]
----
x:<b>:
----
<b>: bold marker
`)

	assert.Equal(t, "<b>", dom.Find("span.callout").Text())
	assert.Equal(t, "<b>", dom.Find("td.marker").Text())
	assert.Equal(t, 0, dom.Find("div.source b").Length())
	assert.Equal(t, 1, dom.Find("div.source").Length())
}

func TestRenderSourceWithoutHighlighting(t *testing.T) {
	e := env.New()
	e.Set("mau.visitor.highlight", false)

	out := renderString(t, e, "[source, go]\n----\nfunc main() {}\n----\n")
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, 0, dom.Find(".kd").Length())
	assert.Equal(t, "func main() {}", dom.Find("span.codeline").Text())
}

func TestRenderLists(t *testing.T) {
	dom := render(t, "* a\n* b\n** c\n\n# one\n# two\n")

	assert.Equal(t, 2, dom.Find("body > ul > li").Length())
	assert.Equal(t, "c", dom.Find("ul ul li").Text())
	assert.Equal(t, 2, dom.Find("ol li").Length())
}

func TestRenderBlocks(t *testing.T) {
	dom := render(t, `[quote, Someone]
----
Wise words
----

. Careful
[admonition, warning, icon-warn, Warning]
----
Hot
----
`)

	assert.Equal(t, "Someone", dom.Find("blockquote cite").Text())
	assert.Contains(t, dom.Find("blockquote p").Text(), "Wise words")

	adm := dom.Find("div.admonition.warning")
	require.Equal(t, 1, adm.Length())
	assert.Equal(t, "Warning", adm.Find("div.label").Text())
	assert.Equal(t, "Careful", adm.Find("div.title").Text())
	assert.Equal(t, 1, adm.Find("i.icon-warn").Length())
}

func TestRenderFootnotes(t *testing.T) {
	dom := render(t, `Text [footnote](n)

[footnote, n]
----
The note
----

::footnotes:
`)

	href, _ := dom.Find("sup a").Attr("href")
	assert.Equal(t, "#footnote-def-1", href)

	entry := dom.Find("div.footnotes div#footnote-def-1")
	require.Equal(t, 1, entry.Length())
	assert.Contains(t, entry.Text(), "The note")
}

func TestRenderImage(t *testing.T) {
	dom := render(t, `<< image:/cat.png, alt_text="A cat"`+"\n")

	img := dom.Find("div.imageblock img")
	src, _ := img.Attr("src")
	alt, _ := img.Attr("alt")
	assert.Equal(t, "/cat.png", src)
	assert.Equal(t, "A cat", alt)
}

func TestRenderDiagram(t *testing.T) {
	dom := render(t, "[engine=raw, preprocessor=d2]\n----\na -> b\n----\n")

	assert.NotZero(t, dom.Find("div.diagram svg").Length())
}

func TestRenderDiagramError(t *testing.T) {
	e := env.New()
	Configure(e)
	set, err := templates.LoadSet(e)
	require.NoError(t, err)

	doc, err := parser.Parse("[engine=raw, preprocessor=d2]\n----\na -> {\n----\n", "test.mau")
	require.NoError(t, err)

	_, err = visitor.New(NewEmitter(templates.NewRenderer(set, templates.WithEnvironment(e)))).Visit(doc)
	assert.ErrorContains(t, err, "rendering diagram")
}
