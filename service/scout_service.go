package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"troop-fundraiser/models"
	"troop-fundraiser/repository"
	"troop-fundraiser/utils"
)

// ScoutService manages the roster
type ScoutService struct {
	backend repository.DataBackendInterface
}

// NewScoutService creates a new ScoutService
func NewScoutService(backend repository.DataBackendInterface) *ScoutService {
	return &ScoutService{backend: backend}
}

// List returns every scout, active or not
func (s *ScoutService) List(ctx context.Context) ([]models.Scout, error) {
	scouts, err := s.backend.GetScouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load scouts: %w", err)
	}
	return scouts, nil
}

// Get returns the scout with id
func (s *ScoutService) Get(ctx context.Context, id string) (*models.Scout, error) {
	scouts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range scouts {
		if scouts[i].ID == id {
			return &scouts[i], nil
		}
	}
	return nil, models.ErrScoutNotFound
}

// FindBySlug returns the scout whose slug matches exactly (case-sensitive)
func (s *ScoutService) FindBySlug(ctx context.Context, slug string) (*models.Scout, error) {
	scouts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range scouts {
		if scouts[i].Slug == slug {
			return &scouts[i], nil
		}
	}
	return nil, models.ErrScoutNotFound
}

// Create adds a scout. A missing id is generated and a missing slug is derived from the name.
func (s *ScoutService) Create(ctx context.Context, req *models.SaveScoutRequest) (*models.Scout, error) {
	scouts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	scout := normalizeScout(req.Scout)
	if scout.ID == "" {
		scout.ID = uuid.New().String()
	}
	for _, existing := range scouts {
		if existing.ID == scout.ID {
			return nil, fmt.Errorf("scout %s already exists", scout.ID)
		}
	}
	if scout.Slug == "" {
		scout.Slug = utils.UniqueSlug(utils.Slugify(scout.Name), slugSet(scouts, ""))
	}

	if err := s.validate(&scout, scouts); err != nil {
		return nil, err
	}
	if err := s.backend.SaveScout(ctx, &scout); err != nil {
		log.Printf("❌ ScoutService.Create: %v", err)
		return nil, fmt.Errorf("failed to save scout: %w", err)
	}
	log.Printf("✅ ScoutService.Create: scout %s (%s) created", scout.ID, scout.Slug)
	return &scout, nil
}

// Update replaces a scout. Changing the slug breaks links already shared,
// so it is refused unless the request confirms it.
func (s *ScoutService) Update(ctx context.Context, id string, req *models.SaveScoutRequest) (*models.Scout, error) {
	scouts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var current *models.Scout
	for i := range scouts {
		if scouts[i].ID == id {
			current = &scouts[i]
			break
		}
	}
	if current == nil {
		return nil, models.ErrScoutNotFound
	}

	scout := normalizeScout(req.Scout)
	scout.ID = id
	if scout.Slug == "" {
		scout.Slug = current.Slug
	}
	if scout.Slug != current.Slug && !req.ConfirmSlugChange {
		return nil, models.ErrSlugImmutable
	}

	if err := s.validate(&scout, scouts); err != nil {
		return nil, err
	}
	if err := s.backend.SaveScout(ctx, &scout); err != nil {
		log.Printf("❌ ScoutService.Update: %v", err)
		return nil, fmt.Errorf("failed to save scout: %w", err)
	}
	if scout.Slug != current.Slug {
		log.Printf("⚠️ ScoutService.Update: slug for %s changed from %s to %s; old referral links no longer resolve", id, current.Slug, scout.Slug)
	}
	return &scout, nil
}

// Delete removes a scout. Orders attributed to the scout keep the id.
func (s *ScoutService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.backend.DeleteScout(ctx, id); err != nil {
		return fmt.Errorf("failed to delete scout: %w", err)
	}
	log.Printf("🗑️ ScoutService.Delete: scout %s deleted", id)
	return nil
}

// Import upserts scouts read from a roster file. Rows are matched to existing scouts by slug.
func (s *ScoutService) Import(ctx context.Context, incoming []models.Scout) (*models.ImportResult, error) {
	scouts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	result := &models.ImportResult{Total: len(incoming)}

	for i, row := range incoming {
		scout := normalizeScout(row)
		if scout.Slug == "" {
			scout.Slug = utils.UniqueSlug(utils.Slugify(scout.Name), slugSet(scouts, ""))
		}
		for _, existing := range scouts {
			if existing.Slug == scout.Slug {
				scout.ID = existing.ID
				break
			}
		}
		if scout.ID == "" {
			scout.ID = uuid.New().String()
		}

		if err := s.validate(&scout, scouts); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d (%s): %v", i+2, scout.Name, err))
			continue
		}
		if err := s.backend.SaveScout(ctx, &scout); err != nil {
			return result, fmt.Errorf("failed to save scout %s: %w", scout.Slug, err)
		}
		scouts = upsertScout(scouts, scout)
		result.Imported++
	}

	log.Printf("✅ ScoutService.Import: imported=%d skipped=%d", result.Imported, result.Skipped)
	return result, nil
}

func (s *ScoutService) validate(scout *models.Scout, roster []models.Scout) error {
	if err := scout.Validate(); err != nil {
		return err
	}
	if slugSet(roster, scout.ID)[scout.Slug] {
		return models.ErrSlugTaken
	}
	return nil
}

func normalizeScout(in models.Scout) models.Scout {
	out := in
	out.ID = strings.TrimSpace(in.ID)
	out.Name = strings.TrimSpace(in.Name)
	out.Slug = strings.TrimSpace(in.Slug)
	out.Rank = models.Rank(strings.ToLower(strings.TrimSpace(string(in.Rank))))
	if !out.Rank.IsValid() {
		if mapped := utils.MapLabelToRank(string(in.Rank)); mapped != "" {
			out.Rank = mapped
		}
	}
	out.Email = strings.TrimSpace(in.Email)
	out.ParentName = strings.TrimSpace(in.ParentName)
	emails := make([]string, 0, len(in.ParentEmails))
	for _, e := range in.ParentEmails {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, e)
		}
	}
	out.ParentEmails = emails
	return out
}

// slugSet returns the slugs in use, ignoring the scout with exceptID
func slugSet(scouts []models.Scout, exceptID string) map[string]bool {
	set := make(map[string]bool, len(scouts))
	for _, s := range scouts {
		if s.ID != exceptID {
			set[s.Slug] = true
		}
	}
	return set
}

func upsertScout(scouts []models.Scout, scout models.Scout) []models.Scout {
	for i := range scouts {
		if scouts[i].ID == scout.ID {
			scouts[i] = scout
			return scouts
		}
	}
	return append(scouts, scout)
}
