package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/syy321818/blogbuilder/internal/content"
	"github.com/syy321818/blogbuilder/internal/plan"
)

// HTMLRenderer is the default Renderer implementation: goldmark for
// markdown bodies, a minimal template shell around them. It exists so the
// pipeline is usable end to end; sites wanting real theming plug in their
// own Renderer.
type HTMLRenderer struct {
	md   goldmark.Markdown
	post *template.Template
	list *template.Template
}

// NewHTMLRenderer constructs the default renderer.
func NewHTMLRenderer() *HTMLRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	return &HTMLRenderer{
		md:   md,
		post: template.Must(template.New("post").Parse(postTemplate)),
		list: template.Must(template.New("list").Parse(listTemplate)),
	}
}

type postView struct {
	Site       SiteMeta
	Title      string
	Date       string
	Lastmod    string
	Tags       []string
	Categories []string
	Body       template.HTML
}

type listItemView struct {
	Title   string
	Href    string
	Date    string
	Excerpt string
}

type listView struct {
	Site       SiteMeta
	Heading    string
	Items      []listItemView
	PageNumber int
	TotalPages int
	PrevHref   string
	NextHref   string
}

// Render implements Renderer.
func (r *HTMLRenderer) Render(ctx context.Context, page Page) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch page.Entry.Kind {
	case plan.KindPost:
		return r.renderPost(page)
	case plan.KindTag, plan.KindCategory, plan.KindIndex:
		return r.renderListing(page)
	default:
		return nil, fmt.Errorf("unknown page kind %q", page.Entry.Kind)
	}
}

func (r *HTMLRenderer) renderPost(page Page) ([]byte, error) {
	if len(page.Items) != 1 {
		return nil, fmt.Errorf("post page %s references %d units, want 1", page.Entry.OutputPath, len(page.Items))
	}
	unit := page.Items[0]

	body, err := r.markdown(unit.Body)
	if err != nil {
		return nil, fmt.Errorf("markdown for %s: %w", unit.Source, err)
	}

	view := postView{
		Site:       page.Site,
		Title:      unit.Title,
		Date:       unit.Date.Format("2006-01-02"),
		Tags:       unit.Tags,
		Categories: unit.Categories,
		Body:       template.HTML(body), // #nosec G203 -- output of the markdown renderer
	}
	if !unit.Lastmod.IsZero() && unit.Lastmod.After(unit.Date) {
		view.Lastmod = unit.Lastmod.Format("2006-01-02")
	}

	var buf bytes.Buffer
	if err := r.post.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *HTMLRenderer) renderListing(page Page) ([]byte, error) {
	heading := page.Entry.Name
	if page.Entry.Kind == plan.KindIndex {
		heading = page.Site.Title
	}

	view := listView{
		Site:       page.Site,
		Heading:    heading,
		PageNumber: page.Entry.PageNumber,
		TotalPages: page.Entry.TotalPages,
	}

	for _, unit := range page.Items {
		excerpt, err := r.excerpt(unit)
		if err != nil {
			return nil, fmt.Errorf("excerpt for %s: %w", unit.Source, err)
		}
		view.Items = append(view.Items, listItemView{
			Title:   unit.Title,
			Href:    "/posts/" + unit.Slug + "/",
			Date:    unit.Date.Format("2006-01-02"),
			Excerpt: excerpt,
		})
	}

	base := pageBase(page.Entry.OutputPath, page.Entry.PageNumber)
	if page.Entry.PageNumber > 1 {
		view.PrevHref = pageHref(base, page.Entry.PageNumber-1)
	}
	if page.Entry.PageNumber < page.Entry.TotalPages {
		view.NextHref = pageHref(base, page.Entry.PageNumber+1)
	}

	var buf bytes.Buffer
	if err := r.list.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *HTMLRenderer) markdown(body string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *HTMLRenderer) excerpt(unit *content.ContentUnit) (string, error) {
	if unit.Description != "" {
		return unit.Description, nil
	}
	rendered, err := r.markdown(unit.Body)
	if err != nil {
		return "", err
	}
	return Excerpt(rendered, excerptLimit), nil
}

const excerptLimit = 200

// pageBase strips the pagination suffix from an output path, yielding the
// listing's base directory ("" for the root index).
func pageBase(outputPath string, pageNumber int) string {
	dir := outputPath[:len(outputPath)-len("index.html")]
	if pageNumber > 1 {
		// dir ends with "page/N/"
		dir = dir[:len(dir)-len(fmt.Sprintf("page/%d/", pageNumber))]
	}
	return dir
}

func pageHref(base string, page int) string {
	if page == 1 {
		return "/" + base
	}
	return fmt.Sprintf("/%spage/%d/", base, page)
}

const postTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} | {{.Site.Title}}</title>
</head>
<body>
<article>
<h1>{{.Title}}</h1>
<p class="meta">{{.Date}}{{if .Lastmod}} (updated {{.Lastmod}}){{end}}</p>
{{if .Tags}}<ul class="tags">{{range .Tags}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Categories}}<ul class="categories">{{range .Categories}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{.Body}}
</article>
</body>
</html>
`

const listTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Heading}} | {{.Site.Title}}</title>
</head>
<body>
<h1>{{.Heading}}</h1>
<ul class="posts">
{{range .Items}}<li><a href="{{.Href}}">{{.Title}}</a> <time>{{.Date}}</time><p>{{.Excerpt}}</p></li>
{{end}}</ul>
{{if gt .TotalPages 1}}<nav class="pagination">
{{if .PrevHref}}<a rel="prev" href="{{.PrevHref}}">newer</a>{{end}}
<span>{{.PageNumber}} / {{.TotalPages}}</span>
{{if .NextHref}}<a rel="next" href="{{.NextHref}}">older</a>{{end}}
</nav>{{end}}
</body>
</html>
`
