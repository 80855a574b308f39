// Package service holds the warbler business rules on top of the repositories.
package service

import (
	"context"
	"log/slog"
	"strings"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt at a fixed cost.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

func (h BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SignupInput carries the fields accepted at registration.
type SignupInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url"`
}

// ProfileUpdate carries the editable profile fields. Blank image URLs fall back to defaults.
type ProfileUpdate struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
}

// ProfileView is a user together with their relationship counts.
type ProfileView struct {
	User           *models.User `json:"user"`
	MessageCount   int64        `json:"message_count"`
	FollowingCount int64        `json:"following_count"`
	FollowerCount  int64        `json:"follower_count"`
	LikeCount      int64        `json:"like_count"`
	// IsFollowing is set only when the profile is viewed with a session.
	IsFollowing    *bool        `json:"is_following,omitempty"`
}

// IdentityService manages accounts: signup, credential checks, profile edits and deletion.
type IdentityService struct {
	users    repository.UserRepository
	follows  repository.FollowRepository
	messages repository.MessageRepository
	likes    repository.LikeRepository
	hasher   PasswordHasher
}

// NewIdentityService returns a new IdentityService.
func NewIdentityService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	messages repository.MessageRepository,
	likes repository.LikeRepository,
	hasher PasswordHasher,
) *IdentityService {
	return &IdentityService{
		users:    users,
		follows:  follows,
		messages: messages,
		likes:    likes,
		hasher:   hasher,
	}
}

// Signup creates a user. A taken username or email yields DUPLICATE_USER and nothing is stored.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateImageURL(in.ImageURL); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       hash,
		ImageURL:       models.ImageOrDefault(in.ImageURL, models.DefaultImageURL),
		HeaderImageURL: models.DefaultHeaderImageURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user signed up",
		slog.Uint64("new_user_id", uint64(user.ID)),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Authenticate returns the user when username and password match, and nil, nil otherwise.
// Errors are reserved for storage failures.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Compare(user.Password, password) {
		return nil, nil
	}
	return user, nil
}

// EditProfile re-checks the actor's current password before applying upd.
func (s *IdentityService) EditProfile(ctx context.Context, actor *models.User, currentPassword string, upd ProfileUpdate) (*models.User, error) {
	if actor == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	authed, err := s.Authenticate(ctx, actor.Username, currentPassword)
	if err != nil {
		return nil, err
	}
	if authed == nil || authed.ID != actor.ID {
		return nil, models.NewUnauthorizedError("Invalid password")
	}

	upd.Username = strings.TrimSpace(upd.Username)
	upd.Email = strings.TrimSpace(upd.Email)
	upd.ImageURL = strings.TrimSpace(upd.ImageURL)
	upd.HeaderImageURL = strings.TrimSpace(upd.HeaderImageURL)

	if err := validation.ValidateUsername(upd.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(upd.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateImageURL(upd.ImageURL); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateImageURL(upd.HeaderImageURL); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBio(upd.Bio); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	fields := map[string]interface{}{
		"username":         upd.Username,
		"email":            upd.Email,
		"image_url":        models.ImageOrDefault(upd.ImageURL, models.DefaultImageURL),
		"header_image_url": models.ImageOrDefault(upd.HeaderImageURL, models.DefaultHeaderImageURL),
		"bio":              upd.Bio,
		"location":         strings.TrimSpace(upd.Location),
	}
	if err := s.users.UpdateProfile(ctx, actor.ID, fields); err != nil {
		return nil, err
	}

	return s.users.GetByID(ctx, actor.ID)
}

// DeleteUser removes the actor and all of their messages, likes and follow edges.
func (s *IdentityService) DeleteUser(ctx context.Context, actor *models.User) error {
	if actor == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if err := s.users.DeleteCascade(ctx, actor.ID); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "user deleted", slog.Uint64("deleted_user_id", uint64(actor.ID)))
	return nil
}

// GetUser returns the user or NOT_FOUND.
func (s *IdentityService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// SearchUsers lists users whose username contains q; a blank q lists everyone.
func (s *IdentityService) SearchUsers(ctx context.Context, q string, limit int) ([]models.User, error) {
	return s.users.Search(ctx, q, limit)
}

// Profile loads a user and their counts; the counts are fetched concurrently.
func (s *IdentityService) Profile(ctx context.Context, id uint) (*ProfileView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{User: user}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		view.MessageCount, err = s.messages.CountByUser(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		view.FollowingCount, err = s.follows.CountFollowing(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		view.FollowerCount, err = s.follows.CountFollowers(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		view.LikeCount, err = s.likes.CountByUser(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}
