package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on a relational database through GORM.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// WithClock overrides the clock used for post timestamps.
func (s *GormStore) WithClock(now func() time.Time) *GormStore {
	s.now = now
	return s
}

func (s *GormStore) DB() *gorm.DB { return s.db }

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreatePost(ctx context.Context, p *models.Post) error {
	p.ID = ""
	p.Timestamp = s.now()
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *GormStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *GormStore) ListPosts(ctx context.Context, opts ListOptions) ([]models.Post, error) {
	query := s.db.WithContext(ctx).Model(&models.Post{})
	if !opts.IncludeModerated {
		query = query.Where("is_moderated = ?", false)
	}
	query = query.Order("timestamp DESC").Order("id DESC")
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *GormStore) IncrementLikes(ctx context.Context, id string) error {
	return affected(s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Update("likes", gorm.Expr("likes + ?", 1)))
}

func (s *GormStore) IncrementReports(ctx context.Context, id string) error {
	return affected(s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reports":     gorm.Expr("reports + ?", 1),
			"is_reported": true,
		}))
}

func (s *GormStore) SetModerated(ctx context.Context, id string, hidden bool) error {
	return affected(s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Update("is_moderated", hidden))
}

func (s *GormStore) GetAccount(ctx context.Context, uid string) (*models.Account, error) {
	var a models.Account
	if err := s.db.WithContext(ctx).First(&a, "uid = ?", uid).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *GormStore) CreateAccount(ctx context.Context, a *models.Account) error {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *GormStore) TouchLogin(ctx context.Context, uid string, at time.Time) error {
	return affected(s.db.WithContext(ctx).Model(&models.Account{}).
		Where("uid = ?", uid).
		Update("last_login_at", at))
}

func (s *GormStore) SetCredits(ctx context.Context, uid string, credits int) error {
	now := s.now()
	account := models.Account{UID: uid, Credits: credits, CreatedAt: now, LastLoginAt: now}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"credits"}),
	}).Create(&account).Error
}

func (s *GormStore) IncrementCredits(ctx context.Context, uid string, delta int) error {
	return affected(s.db.WithContext(ctx).Model(&models.Account{}).
		Where("uid = ?", uid).
		Update("credits", gorm.Expr("credits + ?", delta)))
}

func (s *GormStore) CreatePayment(ctx context.Context, p *models.PaymentSession) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *GormStore) ListPaymentsBySession(ctx context.Context, stripeSessionID string) ([]models.PaymentSession, error) {
	var payments []models.PaymentSession
	err := s.db.WithContext(ctx).
		Where("stripe_session_id = ?", stripeSessionID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (s *GormStore) CompletePayments(ctx context.Context, stripeSessionID string, at time.Time) (int, error) {
	res := s.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("stripe_session_id = ?", stripeSessionID).
		Updates(map[string]interface{}{
			"status":       models.PaymentCompleted,
			"completed_at": at,
		})
	return int(res.RowsAffected), res.Error
}

func (s *GormStore) FailPendingPayments(ctx context.Context, stripeSessionID string) (int, error) {
	res := s.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("stripe_session_id = ? AND status = ?", stripeSessionID, models.PaymentPending).
		Update("status", models.PaymentFailed)
	return int(res.RowsAffected), res.Error
}

func (s *GormStore) ClaimEvent(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProcessedEvent{ID: id, CreatedAt: s.now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) ReleaseEvent(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.ProcessedEvent{}, "id = ?", id).Error
}

func (s *GormStore) CreateCredential(ctx context.Context, c *models.Credential) error {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *GormStore) GetCredential(ctx context.Context, email string) (*models.Credential, error) {
	var c models.Credential
	if err := s.db.WithContext(ctx).First(&c, "email = ?", email).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
