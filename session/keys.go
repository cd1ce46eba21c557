package session

// CookieName is the browser cookie carrying the session id
const CookieName = "tf_session"

// StorageVersion is bumped whenever the layout of stored attribution values changes.
// Sessions carrying another version have their attribution discarded.
const StorageVersion = "2"

// Session keys
const (
	KeyVersion            = "storageVersion"
	KeyAttributedScoutID  = "attributedScoutId"
	KeyAttributedName     = "attributedScoutName"
	KeyAttributedSlug     = "attributedScoutSlug"
	KeyActiveScoutSession = "hasActiveScoutSession"
	KeyNoticeShown        = "unresolvedNoticeShown"
	KeyCart               = "cart"
	KeyLastOrder          = "lastOrder"
	KeyAdminUser          = "adminUser"
)

// AttributionKeys are discarded together on a version change or an explicit clear.
var AttributionKeys = []string{
	KeyAttributedScoutID,
	KeyAttributedName,
	KeyAttributedSlug,
	KeyActiveScoutSession,
	KeyNoticeShown,
}
