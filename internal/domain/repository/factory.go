package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Sessions() SessionRepository
	OrderViews() OrderViewRepository
}
