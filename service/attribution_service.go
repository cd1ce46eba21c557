package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"troop-fundraiser/models"
	"troop-fundraiser/session"
)

// UnresolvedNotice is shown once per session when a referral link does not match the roster
const UnresolvedNotice = "We couldn't find the scout from your link, but you can still place your order. " +
	"Add the scout's name at checkout and the pack will credit them when orders are fulfilled."

// Slugs and ids from the old demo roster. Links built from them are still in circulation.
var (
	demoSlugs = map[string]bool{
		"demo-scout":    true,
		"sample-scout":  true,
		"test-scout":    true,
		"example-scout": true,
		"johnny-demo":   true,
		"jane-demo":     true,
	}
	demoScoutIDs = map[string]bool{
		"demo-1":     true,
		"demo-2":     true,
		"demo-3":     true,
		"sample-1":   true,
		"test-scout": true,
	}
)

// ScoutLookup resolves a referral slug against the roster
type ScoutLookup interface {
	FindBySlug(ctx context.Context, slug string) (*models.Scout, error)
}

// AttributionService links browsing sessions to the scout whose referral link started them
type AttributionService struct {
	roster ScoutLookup
}

// NewAttributionService creates a new AttributionService
func NewAttributionService(roster ScoutLookup) *AttributionService {
	return &AttributionService{roster: roster}
}

// Resolve runs on every navigation. slug is the referral parameter of the current URL ("" when absent).
// Lookup failures degrade to the unresolved sentinel; only session store failures are returned.
func (s *AttributionService) Resolve(ctx context.Context, values session.Values, slug string) (*models.AttributionResponse, error) {
	if err := s.checkVersion(ctx, values); err != nil {
		return nil, err
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		attribution, err := s.Current(ctx, values)
		if err != nil {
			return nil, err
		}
		if attribution == nil {
			// no referral in this session; drop anything left by an earlier visitor
			if err := values.Delete(ctx, session.KeyAttributedScoutID, session.KeyAttributedName, session.KeyAttributedSlug); err != nil {
				return nil, fmt.Errorf("failed to clear attribution: %w", err)
			}
		}
		return &models.AttributionResponse{Attribution: attribution}, nil
	}

	if demoSlugs[slug] {
		log.Printf("⚠️ AttributionService.Resolve: purging demo referral slug %s", slug)
		return &models.AttributionResponse{}, s.Clear(ctx, values)
	}

	if err := values.Set(ctx, session.KeyActiveScoutSession, "true"); err != nil {
		return nil, fmt.Errorf("failed to mark attributed session: %w", err)
	}

	scout, err := s.roster.FindBySlug(ctx, slug)
	if err != nil && !errors.Is(err, models.ErrScoutNotFound) {
		log.Printf("⚠️ AttributionService.Resolve: roster lookup for %s failed: %v", slug, err)
	}
	if scout != nil && demoScoutIDs[scout.ID] {
		log.Printf("⚠️ AttributionService.Resolve: purging demo scout %s", scout.ID)
		return &models.AttributionResponse{}, s.Clear(ctx, values)
	}

	if scout != nil && scout.Active {
		attribution := &models.AttributionContext{ScoutID: scout.ID, ScoutName: scout.Name, Slug: slug}
		if err := s.store(ctx, values, attribution); err != nil {
			return nil, err
		}
		log.Printf("✅ AttributionService.Resolve: session attributed to %s (%s)", scout.ID, slug)
		return &models.AttributionResponse{Attribution: attribution}, nil
	}

	attribution := &models.AttributionContext{ScoutID: models.UnresolvedScoutID, Slug: slug}
	if err := s.store(ctx, values, attribution); err != nil {
		return nil, err
	}
	log.Printf("⚠️ AttributionService.Resolve: referral slug %s did not resolve", slug)

	response := &models.AttributionResponse{Attribution: attribution}
	_, shown, err := values.Get(ctx, session.KeyNoticeShown)
	if err != nil {
		return nil, fmt.Errorf("failed to read notice flag: %w", err)
	}
	if !shown {
		response.Notice = UnresolvedNotice
		if err := values.Set(ctx, session.KeyNoticeShown, "true"); err != nil {
			return nil, fmt.Errorf("failed to record notice: %w", err)
		}
	}
	return response, nil
}

// Current returns the stored attribution of an actively attributed session, or nil.
func (s *AttributionService) Current(ctx context.Context, values session.Values) (*models.AttributionContext, error) {
	_, active, err := values.Get(ctx, session.KeyActiveScoutSession)
	if err != nil {
		return nil, fmt.Errorf("failed to read attribution flag: %w", err)
	}
	if !active {
		return nil, nil
	}

	id, found, err := values.Get(ctx, session.KeyAttributedScoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to read attribution: %w", err)
	}
	if !found || id == "" {
		return nil, nil
	}
	if demoScoutIDs[id] {
		return nil, s.Clear(ctx, values)
	}

	name, _, err := values.Get(ctx, session.KeyAttributedName)
	if err != nil {
		return nil, fmt.Errorf("failed to read attribution: %w", err)
	}
	slug, _, err := values.Get(ctx, session.KeyAttributedSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to read attribution: %w", err)
	}
	return &models.AttributionContext{ScoutID: id, ScoutName: name, Slug: slug}, nil
}

// Clear removes all attribution state from the session
func (s *AttributionService) Clear(ctx context.Context, values session.Values) error {
	if err := values.Delete(ctx, session.AttributionKeys...); err != nil {
		return fmt.Errorf("failed to clear attribution: %w", err)
	}
	return nil
}

func (s *AttributionService) store(ctx context.Context, values session.Values, a *models.AttributionContext) error {
	for key, value := range map[string]string{
		session.KeyAttributedScoutID: a.ScoutID,
		session.KeyAttributedName:    a.ScoutName,
		session.KeyAttributedSlug:    a.Slug,
	} {
		if err := values.Set(ctx, key, value); err != nil {
			return fmt.Errorf("failed to store attribution: %w", err)
		}
	}
	return nil
}

// checkVersion discards attribution written under another storage layout
func (s *AttributionService) checkVersion(ctx context.Context, values session.Values) error {
	version, _, err := values.Get(ctx, session.KeyVersion)
	if err != nil {
		return fmt.Errorf("failed to read storage version: %w", err)
	}
	if version == session.StorageVersion {
		return nil
	}
	if err := s.Clear(ctx, values); err != nil {
		return err
	}
	return values.Set(ctx, session.KeyVersion, session.StorageVersion)
}
