package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"troop-fundraiser/models"
	"troop-fundraiser/templating"
	"troop-fundraiser/utils"
)

// EmailService renders the configured templates for a confirmed order and hands them to the sender.
// Failures are logged only.
type EmailService struct {
	sender EmailSenderInterface
	scouts *ScoutService
	config *ConfigService
}

// NewEmailService creates a new EmailService
func NewEmailService(sender EmailSenderInterface, scouts *ScoutService, config *ConfigService) *EmailService {
	return &EmailService{sender: sender, scouts: scouts, config: config}
}

// Ensure EmailService implements OrderNotifier
var _ OrderNotifier = (*EmailService)(nil)

// OrderPlaced sends the customer confirmation and, for attributed orders, the scout notification
func (s *EmailService) OrderPlaced(ctx context.Context, cfg *models.SiteConfig, order *models.Order) {
	var scout *models.Scout
	if id := order.ScoutIDValue(); id != "" {
		found, err := s.scouts.Get(ctx, id)
		if err != nil {
			log.Printf("⚠️ EmailService.OrderPlaced: scout %s unavailable for notification: %v", id, err)
		} else {
			scout = found
		}
	}

	msgs := s.Messages(cfg, order, scout)
	if len(msgs) == 0 {
		return
	}
	if err := s.sender.Send(ctx, msgs); err != nil {
		log.Printf("❌ EmailService.OrderPlaced: emails for order %s not sent: %v", order.OrderID, err)
		return
	}
	log.Printf("📧 EmailService.OrderPlaced: %d email(s) sent for order %s", len(msgs), order.OrderID)
}

// Messages renders the emails for an order without sending them
func (s *EmailService) Messages(cfg *models.SiteConfig, order *models.Order, scout *models.Scout) []EmailMessage {
	ctx := s.templateContext(cfg, order, scout)
	var msgs []EmailMessage

	if tmpl, ok := cfg.Template(models.TemplateOrderConfirmation); ok && order.CustomerEmail != "" {
		subject, body := templating.Render(tmpl, ctx)
		msgs = append(msgs, EmailMessage{
			To:      []string{order.CustomerEmail},
			Subject: subject,
			HTML:    body,
			ReplyTo: cfg.Pack.ContactEmail,
		})
	}

	if tmpl, ok := cfg.Template(models.TemplateScoutNotification); ok && scout != nil {
		to := append([]string{}, scout.ParentEmails...)
		if scout.Email != "" {
			to = append(to, scout.Email)
		}
		if len(to) > 0 {
			subject, body := templating.Render(tmpl, ctx)
			msgs = append(msgs, EmailMessage{To: to, Subject: subject, HTML: body, ReplyTo: cfg.Pack.ContactEmail})
		}
	}
	return msgs
}

func (s *EmailService) templateContext(cfg *models.SiteConfig, order *models.Order, scout *models.Scout) templating.Context {
	var items strings.Builder
	itemCount := 0
	for _, item := range order.Items {
		itemCount += item.Quantity
		fmt.Fprintf(&items, "<li>%d × %s (%s)</li>", item.Quantity, html.EscapeString(item.ProductName), utils.FormatUSD(item.LineTotal()))
	}

	ctx := templating.Context{
		"orderId":         order.OrderID,
		"customerName":    order.CustomerName,
		"customerEmail":   order.CustomerEmail,
		"customerPhone":   order.CustomerPhone,
		"comments":        order.Comments,
		"total":           order.Total,
		"itemCount":       itemCount,
		"itemsHtml":       items.String(),
		"isDonation":      order.IsDonation,
		"supportingScout": order.SupportingScout,
		"orderDate":       order.OrderDate.Format("January 2, 2006"),
		"packName":        cfg.Pack.Name,
		"campaignName":    cfg.Campaign.Name,
		"contactEmail":    cfg.Pack.ContactEmail,
	}
	if scout != nil {
		ctx["scoutName"] = scout.Name
		ctx["parentName"] = scout.ParentName
	} else if order.SupportingScout != "" {
		ctx["scoutName"] = order.SupportingScout
	}
	if cfg.Payment != nil && s.config != nil {
		ctx["paymentInstructions"] = s.config.RenderMarkdown(cfg.Payment.Instructions)
	}
	return ctx
}
