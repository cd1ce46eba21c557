package models

// UnresolvedScoutID is the sentinel scout id stored when a referral slug did not match the roster.
const UnresolvedScoutID = "__unresolved__"

// AttributionContext links a browsing session to the scout who referred it
type AttributionContext struct {
	ScoutID   string `json:"scoutId"`
	ScoutName string `json:"scoutName,omitempty"`
	Slug      string `json:"slug"`
}

// IsResolved reports whether the context names a real roster scout.
func (a *AttributionContext) IsResolved() bool {
	return a != nil && a.ScoutID != "" && a.ScoutID != UnresolvedScoutID
}

// IsUnresolved reports whether the context is the unresolved sentinel.
func (a *AttributionContext) IsUnresolved() bool {
	return a != nil && a.ScoutID == UnresolvedScoutID
}

// AttributionResponse represents the resolver result returned to the storefront.
// Notice is set only the first time an unresolved link is seen in a session.
type AttributionResponse struct {
	Attribution *AttributionContext `json:"attribution"`
	Notice      string              `json:"notice,omitempty"`
}

// LeaderboardEntry is one scout's fundraising standing
type LeaderboardEntry struct {
	Position   int    `json:"position"`
	ScoutID    string `json:"scoutId"`
	ScoutName  string `json:"scoutName"`
	ScoutRank  Rank   `json:"scoutRank"`
	OrderCount int    `json:"orderCount"`
	Total      Money  `json:"total"`
}

// LeaderboardResponse represents the response for the leaderboard endpoint
type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}
