package service

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"log"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"troop-fundraiser/utils"
)

//go:embed templates/flyer.html
var flyerTemplates embed.FS

// FlyerService renders printable referral flyers for a scout
type FlyerService struct {
	scouts     *ScoutService
	config     *ConfigService
	images     *ProductImageService
	baseURL    string
	chromePath string
	tmpl       *template.Template
}

type flyerProduct struct {
	Name        string
	Description string
	Price       string
	ImageURI    template.URL
}

type flyerData struct {
	PackName     string
	CampaignName string
	ScoutName    string
	ReferralURL  string
	HeroHTML     template.HTML
	Products     []flyerProduct
}

// NewFlyerService creates a new FlyerService. images may be nil, in which case flyers have no pictures.
func NewFlyerService(scouts *ScoutService, config *ConfigService, images *ProductImageService, baseURL, chromePath string) (*FlyerService, error) {
	tmpl, err := template.ParseFS(flyerTemplates, "templates/flyer.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse flyer template: %w", err)
	}
	return &FlyerService{
		scouts:     scouts,
		config:     config,
		images:     images,
		baseURL:    baseURL,
		chromePath: chromePath,
		tmpl:       tmpl,
	}, nil
}

// detectChromePath returns the configured Chrome path, or the first common installation path that exists
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}
	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// RenderHTML renders the flyer for a scout with product images inlined
func (s *FlyerService) RenderHTML(ctx context.Context, scoutID string) (string, error) {
	scout, err := s.scouts.Get(ctx, scoutID)
	if err != nil {
		return "", err
	}
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return "", err
	}

	data := flyerData{
		PackName:     cfg.Pack.Name,
		CampaignName: cfg.Campaign.Name,
		ScoutName:    scout.Name,
		ReferralURL:  utils.ReferralURL(s.baseURL, *scout),
		HeroHTML:     template.HTML(s.config.RenderMarkdown(cfg.Content.HeroBody)),
	}
	for _, product := range cfg.ActiveProducts() {
		fp := flyerProduct{
			Name:        product.Name,
			Description: product.Description,
			Price:       utils.FormatUSD(product.Price),
		}
		if s.images != nil {
			img, err := s.images.Image(ctx, product.ID, SizeThumb)
			if err != nil {
				log.Printf("⚠️  Flyer: no image for product %s: %v", product.ID, err)
			} else {
				fp.ImageURI = template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img))
			}
		}
		data.Products = append(data.Products, fp)
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "flyer.html", data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GeneratePDF prints the flyer with headless Chrome on US letter paper
func (s *FlyerService) GeneratePDF(ctx context.Context, scoutID string) ([]byte, error) {
	html, err := s.RenderHTML(ctx, scoutID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath := detectChromePath(s.chromePath); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	var pdfBuf []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.Sleep(500), // Let inlined images decode
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	log.Printf("✅ Flyer PDF generated for scout %s (%d bytes)", scoutID, len(pdfBuf))
	return pdfBuf, nil
}
