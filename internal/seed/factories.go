// Package seed provides helpers to create demo data for development
// databases: users, a follow mesh, messages and likes.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"warbler/internal/models"
	"warbler/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password every seeded user can log in with.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db           *gorm.DB
	opts         Options
	faker        *gofakeit.Faker
	passwordHash string
	now          time.Time
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to db. passwordHash is stored on every user.
func NewFactory(db *gorm.DB, opts Options, passwordHash string) *Factory {
	return &Factory{
		db:           db,
		opts:         opts,
		faker:        gofakeit.New(opts.RandSeed),
		passwordHash: passwordHash,
		now:          time.Now().UTC(),
		nextID:       1000,
	}
}

// intn returns a pseudo-random int in [0, n).
func (f *Factory) intn(n int) int {
	if n <= 1 {
		return 0
	}
	return f.faker.Number(0, n-1)
}

// BuildUser constructs a user without persisting it. index keeps usernames unique.
func (f *Factory) BuildUser(index int, overrides ...func(*models.User)) *models.User {
	base := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToLower(f.faker.Username()))
	if base == "" {
		base = "user"
	}
	if len(base) > 20 {
		base = base[:20]
	}
	username := fmt.Sprintf("%s%d", base, index)

	user := &models.User{
		Username:       username,
		Email:          username + "@example.com",
		Password:       f.passwordHash,
		ImageURL:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		HeaderImageURL: models.DefaultHeaderImageURL,
		Bio:            f.faker.Sentence(8),
		Location:       f.faker.City(),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// BuildMessage constructs a message by author with a timestamp spread over
// the last MaxDays days.
func (f *Factory) BuildMessage(author *models.User, overrides ...func(*models.Message)) *models.Message {
	text, err := validation.NormalizeMessageText(f.faker.Sentence(4 + f.intn(10)))
	if err != nil {
		// Sentences can run past the limit; keep the first words that fit.
		text = truncateWords(f.faker.Sentence(12), models.MaxMessageLength)
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.intn(maxDays))*24*time.Hour +
		time.Duration(f.intn(24))*time.Hour +
		time.Duration(f.intn(60))*time.Minute

	msg := &models.Message{
		Text:      text,
		UserID:    author.ID,
		Timestamp: f.now.Add(-back),
	}
	for _, override := range overrides {
		override(msg)
	}
	return msg
}

func truncateWords(s string, limit int) string {
	var sb strings.Builder
	for _, w := range strings.Fields(s) {
		if len([]rune(sb.String()))+len([]rune(w))+1 > limit {
			break
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w)
	}
	if sb.Len() == 0 {
		return "hello"
	}
	return sb.String()
}

// CreateUsersBatch persists users in batches.
func (f *Factory) CreateUsersBatch(users []*models.User) error {
	if f.opts.DryRun {
		for _, u := range users {
			f.nextID++
			u.ID = f.nextID
		}
		log.Printf("[dry-run] CreateUsersBatch: %d users (no DB write)", len(users))
		return nil
	}
	return f.db.CreateInBatches(users, 100).Error
}

// CreateMessagesBatch persists messages in batches.
func (f *Factory) CreateMessagesBatch(msgs []*models.Message) error {
	if f.opts.DryRun {
		for _, m := range msgs {
			f.nextID++
			m.ID = f.nextID
		}
		log.Printf("[dry-run] CreateMessagesBatch: %d messages (no DB write)", len(msgs))
		return nil
	}
	return f.db.Omit(clause.Associations).CreateInBatches(msgs, 200).Error
}

// CreateFollows inserts follow edges, skipping ones that already exist.
func (f *Factory) CreateFollows(edges []models.Follow) error {
	if f.opts.DryRun || len(edges) == 0 {
		return nil
	}
	return f.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(edges, 200).Error
}

// CreateLikes inserts like edges, skipping ones that already exist.
func (f *Factory) CreateLikes(edges []models.Like) error {
	if f.opts.DryRun || len(edges) == 0 {
		return nil
	}
	return f.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(edges, 200).Error
}

// pick returns up to k distinct indexes from [0, n) excluding skip.
func (f *Factory) pick(n, k, skip int) []int {
	pool := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != skip {
			pool = append(pool, i)
		}
	}
	if k > len(pool) {
		k = len(pool)
	}
	// partial Fisher-Yates
	for i := 0; i < k; i++ {
		j := i + f.intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
