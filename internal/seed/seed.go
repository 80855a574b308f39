package seed

import (
	"fmt"
	"log"

	"warbler/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a seeding run. The yaml tags let presets be loaded from files.
type Options struct {
	Users          int   `yaml:"users"`
	Messages       int   `yaml:"messages"`
	FollowsPerUser int   `yaml:"follows_per_user"`
	LikesPerUser   int   `yaml:"likes_per_user"`
	MaxDays        int   `yaml:"max_days"`
	Clean          bool  `yaml:"clean"`
	FastHash       bool  `yaml:"fast_hash"`
	DryRun         bool  `yaml:"dry_run"`
	RandSeed       int64 `yaml:"rand_seed"`
}

// Result summarizes what a run created.
type Result struct {
	Users    []*models.User
	Messages []*models.Message
	Follows  int
	Likes    int
}

// Seeder populates a database according to Options.
type Seeder struct {
	db   *gorm.DB
	opts Options
}

// NewSeeder returns a Seeder for db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts}
}

// ClearAll deletes every like, message, follow edge and user.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	tx := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{&models.Like{}, &models.Message{}, &models.Follow{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run clears (if requested) and seeds users, follows, messages and likes.
func (s *Seeder) Run() (*Result, error) {
	log.Printf("🌱 Seeding %d users and %d messages...", s.opts.Users, s.opts.Messages)

	if s.opts.Clean && !s.opts.DryRun {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	cost := bcrypt.DefaultCost
	if s.opts.FastHash {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	f := NewFactory(s.db, s.opts, string(hash))

	res := &Result{}
	if res.Users, err = s.seedUsers(f); err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(res.Users))

	if res.Follows, err = s.seedFollows(f, res.Users); err != nil {
		return nil, fmt.Errorf("failed to create follows: %w", err)
	}
	log.Printf("✓ %d follow edges created", res.Follows)

	if res.Messages, err = s.seedMessages(f, res.Users); err != nil {
		return nil, fmt.Errorf("failed to create messages: %w", err)
	}
	log.Printf("✓ %d messages created", len(res.Messages))

	if res.Likes, err = s.seedLikes(f, res.Users, res.Messages); err != nil {
		return nil, fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("✓ %d likes created", res.Likes)

	log.Println("🎉 Database seeding completed successfully!")
	return res, nil
}

func (s *Seeder) seedUsers(f *Factory) ([]*models.User, error) {
	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		users = append(users, f.BuildUser(i+1))
	}
	if len(users) == 0 {
		return users, nil
	}
	return users, f.CreateUsersBatch(users)
}

func (s *Seeder) seedFollows(f *Factory, users []*models.User) (int, error) {
	var edges []models.Follow
	for i, u := range users {
		for _, j := range f.pick(len(users), s.opts.FollowsPerUser, i) {
			edges = append(edges, models.Follow{FollowerID: u.ID, FollowedID: users[j].ID})
		}
	}
	return len(edges), f.CreateFollows(edges)
}

// seedMessages assigns each message a random author.
func (s *Seeder) seedMessages(f *Factory, users []*models.User) ([]*models.Message, error) {
	if len(users) == 0 {
		return nil, nil
	}
	msgs := make([]*models.Message, 0, s.opts.Messages)
	for i := 0; i < s.opts.Messages; i++ {
		author := users[f.intn(len(users))]
		msgs = append(msgs, f.BuildMessage(author))
	}
	if len(msgs) == 0 {
		return msgs, nil
	}
	return msgs, f.CreateMessagesBatch(msgs)
}

// seedLikes never lets a user like their own message.
func (s *Seeder) seedLikes(f *Factory, users []*models.User, msgs []*models.Message) (int, error) {
	var edges []models.Like
	for _, u := range users {
		candidates := make([]*models.Message, 0, len(msgs))
		for _, m := range msgs {
			if m.UserID != u.ID {
				candidates = append(candidates, m)
			}
		}
		for _, j := range f.pick(len(candidates), s.opts.LikesPerUser, -1) {
			edges = append(edges, models.Like{UserID: u.ID, MessageID: candidates[j].ID})
		}
	}
	return len(edges), f.CreateLikes(edges)
}
