package domain

// NATS subjects published by the service.
const (
	SubjectListingCreated       = "listing.created"
	SubjectListingStatusUpdated = "listing.status.updated"
	SubjectListingDeleted       = "listing.deleted"
	SubjectListingFlagged       = "listing.flagged"
	SubjectListingReported      = "listing.reported"
	SubjectFavoriteAdded        = "favorite.added"
	SubjectFavoriteRemoved      = "favorite.removed"
)
