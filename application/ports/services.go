package ports

import "context"

// UserProfile is the subset of user identity needed for owner projections
type UserProfile struct {
	ID        int
	UserName  *string
	FirstName *string
	LastName  *string
	Email     string
}

// UserDirectory resolves user identities for response projections
type UserDirectory interface {
	// GetUser retrieves a user's profile by ID
	GetUser(ctx context.Context, userID int) (*UserProfile, error)
}
