package printer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/dgnsrekt/starchart/internal/panel"
	"github.com/dgnsrekt/starchart/internal/snapshot"
	"github.com/dgnsrekt/starchart/internal/starchart"
)

const defaultTimeout = 45 * time.Second

// Document is one printable chart page.
type Document struct {
	Title       string
	Place       string
	Date        string
	Style       starchart.Style
	Coordinates string
	Source      string
	ImageURL    string
}

// FromState describes the chart currently visible in a panel. A fallback sky
// is printed under its own date.
func FromState(place string, loc starchart.Location, s panel.State) Document {
	date := s.ChartDate
	if date == "" {
		date = s.Date
	}
	return Document{
		Title:       "Night Sky",
		Place:       place,
		Date:        date,
		Style:       s.Style,
		Coordinates: loc.Coordinates(),
		Source:      s.Source,
		ImageURL:    s.ImageURL,
	}
}

// Printer renders chart pages to PDF in Chromium.
type Printer struct {
	cdpURL  string
	timeout time.Duration
}

// New returns a Printer. An empty cdpURL launches a local headless Chromium;
// otherwise the printer attaches to the browser at cdpURL.
func New(cdpURL string, timeout time.Duration) *Printer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Printer{cdpURL: strings.TrimSpace(cdpURL), timeout: timeout}
}

var pageTmpl = template.Must(template.New("print").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 32px; color: #111; }
  h1 { margin: 0 0 4px; font-size: 28px; }
  .meta { margin: 0 0 16px; color: #444; }
  img { max-width: 100%; border-radius: 8px; }
  footer { margin-top: 12px; font-size: 12px; color: #666; }
</style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <p class="meta">{{.Place}} • {{.PrettyDate}} (UTC)</p>
  <img id="chart" src="{{.ImageURL}}" alt="Star chart">
  <footer>{{.Coordinates}} • Source: {{.Source}}</footer>
</body>
</html>
`))

// RenderHTML produces the print page markup.
func RenderHTML(doc Document) (string, error) {
	if strings.TrimSpace(doc.ImageURL) == "" {
		return "", errors.New("printer: no chart image to print")
	}
	if doc.Title == "" {
		doc.Title = "Night Sky"
	}
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Document
		PrettyDate string
	}{doc, starchart.PrettyDate(doc.Date)})
	if err != nil {
		return "", fmt.Errorf("printer: render page: %w", err)
	}
	return buf.String(), nil
}

const waitForImageJS = `new Promise(resolve => {
  const img = document.getElementById('chart');
  if (!img) { resolve(false); return; }
  if (img.complete) { resolve(img.naturalWidth > 0); return; }
  img.onload = () => resolve(true);
  img.onerror = () => resolve(false);
})`

// PrintPDF renders doc and returns the PDF bytes.
func (p *Printer) PrintPDF(ctx context.Context, doc Document) ([]byte, error) {
	html, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if p.cdpURL != "" {
		slog.Debug("printing via remote browser", "cdp_url", p.cdpURL)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, p.cdpURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	}
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	var loaded bool
	var pdf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.Evaluate(waitForImageJS, &loaded, func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
			return params.WithAwaitPromise(true)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if !loaded {
				return errors.New("chart image failed to load")
			}
			data, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return fmt.Errorf("print to pdf: %w", err)
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	return pdf, nil
}

// Archive prints doc and stores the PDF with its metadata.
func (p *Printer) Archive(ctx context.Context, store *snapshot.Store, doc Document) (snapshot.Meta, error) {
	pdf, err := p.PrintPDF(ctx, doc)
	if err != nil {
		return snapshot.Meta{}, err
	}
	meta, err := store.Save(snapshot.Meta{
		Date:     doc.Date,
		Style:    string(doc.Style),
		Source:   doc.Source,
		ImageURL: doc.ImageURL,
		Format:   "pdf",
	}, pdf)
	if err != nil {
		return snapshot.Meta{}, err
	}
	slog.Info("chart printed", "id", meta.ID, "date", meta.Date, "path", store.Path(meta))
	return meta, nil
}
