package models

import (
	"fmt"
	"strings"
	"time"
)

// CurrentConfigVersion is the site configuration schema version this build understands.
const CurrentConfigVersion = 1

// Email template keys
const (
	TemplateOrderConfirmation = "orderConfirmation"
	TemplateScoutNotification = "scoutNotification"
)

const dateLayout = "2006-01-02"

// SiteConfig is the single mutable document describing the campaign.
// Donation and Payment are optional sections.
type SiteConfig struct {
	Version        int                      `json:"version"`
	Campaign       Campaign                 `json:"campaign"`
	Pack           PackInfo                 `json:"pack"`
	Products       []Product                `json:"products"`
	Content        ContentBlocks            `json:"content"`
	Donation       *DonationSettings        `json:"donation,omitempty"`
	Payment        *PaymentInstructions     `json:"payment,omitempty"`
	EmailTemplates map[string]EmailTemplate `json:"emailTemplates,omitempty"`
}

// Campaign holds the sale window. Dates are YYYY-MM-DD and inclusive.
type Campaign struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// PackInfo identifies the pack running the fundraiser
type PackInfo struct {
	Name         string `json:"name"`
	Number       string `json:"number,omitempty"`
	Council      string `json:"council,omitempty"`
	City         string `json:"city,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
}

// Product is a catalog entry
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Price       Money  `json:"price"`
	ImageFile   string `json:"imageFile,omitempty"`   // file name under PRODUCT_IMAGE_DIR
	DriveFileID string `json:"driveFileId,omitempty"` // Google Drive file id, takes precedence over ImageFile
	Active      bool   `json:"active"`
}

// ContentBlocks are markdown text blocks shown on the storefront
type ContentBlocks struct {
	HeroTitle   string     `json:"heroTitle,omitempty"`
	HeroBody    string     `json:"heroBody,omitempty"`
	FAQ         []FAQEntry `json:"faq,omitempty"`
	Disclaimers []string   `json:"disclaimers,omitempty"`
}

// FAQEntry is one question/answer pair; Answer is markdown.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// DonationSettings controls the donation opt-in at checkout
type DonationSettings struct {
	Enabled     bool   `json:"enabled"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

// PaymentInstructions are the manual payment details shown after checkout
type PaymentInstructions struct {
	Venmo          string `json:"venmo,omitempty"`
	PayPal         string `json:"paypal,omitempty"`
	CheckPayableTo string `json:"checkPayableTo,omitempty"`
	Instructions   string `json:"instructions,omitempty"` // markdown
}

// EmailTemplate is a subject and HTML body with {{placeholders}} and {{#if cond}} blocks
type EmailTemplate struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"htmlBody"`
}

// Validate checks the document against the schema rules.
func (c *SiteConfig) Validate() error {
	errs := ValidationErrors{}
	if c.Version <= 0 {
		errs.Add("version", "version is required")
	} else if c.Version > CurrentConfigVersion {
		errs.Add("version", fmt.Sprintf("version %d is newer than supported version %d", c.Version, CurrentConfigVersion))
	}
	if strings.TrimSpace(c.Pack.Name) == "" {
		errs.Add("pack.name", "pack name is required")
	}
	if c.Pack.ContactEmail != "" && !IsValidEmail(c.Pack.ContactEmail) {
		errs.Add("pack.contactEmail", "contact email is not valid")
	}

	start, startErr := parseOptionalDate(c.Campaign.StartDate)
	if startErr != nil {
		errs.Add("campaign.startDate", "start date must be YYYY-MM-DD")
	}
	end, endErr := parseOptionalDate(c.Campaign.EndDate)
	if endErr != nil {
		errs.Add("campaign.endDate", "end date must be YYYY-MM-DD")
	}
	if startErr == nil && endErr == nil && !start.IsZero() && !end.IsZero() && end.Before(start) {
		errs.Add("campaign.endDate", "end date must not be before start date")
	}

	seen := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		field := fmt.Sprintf("products[%d]", i)
		if strings.TrimSpace(p.ID) == "" {
			errs.Add(field+".id", "product id is required")
		} else if seen[p.ID] {
			errs.Add(field+".id", "duplicate product id "+p.ID)
		}
		seen[p.ID] = true
		if strings.TrimSpace(p.Name) == "" {
			errs.Add(field+".name", "product name is required")
		}
		if p.Price < 0 {
			errs.Add(field+".price", "price cannot be negative")
		}
	}

	for key, tmpl := range c.EmailTemplates {
		if strings.TrimSpace(tmpl.Subject) == "" {
			errs.Add("emailTemplates."+key+".subject", "subject is required")
		}
	}
	return errs.Err()
}

// FindProduct returns the product with id.
func (c *SiteConfig) FindProduct(id string) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// ActiveProducts returns products that can be ordered.
func (c *SiteConfig) ActiveProducts() []Product {
	products := make([]Product, 0, len(c.Products))
	for _, p := range c.Products {
		if p.Active {
			products = append(products, p)
		}
	}
	return products
}

// DonationsEnabled reports whether checkout accepts the donation opt-in.
func (c *SiteConfig) DonationsEnabled() bool {
	return c.Donation != nil && c.Donation.Enabled
}

// CampaignOpen reports whether now falls inside the campaign window.
// Missing dates leave that side of the window open.
func (c *SiteConfig) CampaignOpen(now time.Time) bool {
	start, err := parseOptionalDate(c.Campaign.StartDate)
	if err == nil && !start.IsZero() && now.Before(start) {
		return false
	}
	end, err := parseOptionalDate(c.Campaign.EndDate)
	if err == nil && !end.IsZero() && !now.Before(end.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// Template returns the email template for key.
func (c *SiteConfig) Template(key string) (EmailTemplate, bool) {
	tmpl, ok := c.EmailTemplates[key]
	return tmpl, ok
}

func parseOptionalDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, s, time.Local)
}

// PublicSiteConfig is the storefront view of the configuration with markdown rendered to HTML
type PublicSiteConfig struct {
	Campaign     Campaign          `json:"campaign"`
	CampaignOpen bool              `json:"campaignOpen"`
	Pack         PackInfo          `json:"pack"`
	Products     []Product         `json:"products"`
	HeroTitle    string            `json:"heroTitle,omitempty"`
	HeroHTML     string            `json:"heroHtml,omitempty"`
	FAQ          []FAQEntryHTML    `json:"faq,omitempty"`
	Disclaimers  []string          `json:"disclaimers,omitempty"`
	Donation     *DonationSettings `json:"donation,omitempty"`
	Payment      *PaymentView      `json:"payment,omitempty"`
}

// FAQEntryHTML is an FAQ entry with the answer rendered to HTML
type FAQEntryHTML struct {
	Question   string `json:"question"`
	AnswerHTML string `json:"answerHtml"`
}

// PaymentView is the payment section with instructions rendered to HTML
type PaymentView struct {
	Venmo            string `json:"venmo,omitempty"`
	PayPal           string `json:"paypal,omitempty"`
	CheckPayableTo   string `json:"checkPayableTo,omitempty"`
	InstructionsHTML string `json:"instructionsHtml,omitempty"`
}
