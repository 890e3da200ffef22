package repository

import (
	"context"
	"time"

	"github.com/contactbook/api/internal/model"
	ctxutil "github.com/contactbook/api/pkg/context"
	"github.com/contactbook/api/pkg/logger"
	"gorm.io/gorm"
)

// ContactFilter narrows GetAll by case-insensitive substring match.
type ContactFilter struct {
	Name    string
	Surname string
	Email   string
}

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// GetAll returns the owner's contacts matching the filter, paginated.
func (r *ContactRepository) GetAll(ctx context.Context, userID uint, filter ContactFilter, offset, limit int) ([]model.Contact, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetAll")

	logger.DebugWithContext(ctx, "Getting contacts").
		Int("user_id", int(userID)).
		Int("offset", offset).
		Int("limit", limit).
		Log()

	if err := ctx.Err(); err != nil {
		logger.WarnWithContext(ctx, "Context cancelled before query").
			Err(err).
			Log()
		return nil, err
	}

	start := time.Now()
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.Name != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Surname != "" {
		query = query.Where("surname ILIKE ?", "%"+filter.Surname+"%")
	}
	if filter.Email != "" {
		query = query.Where("email ILIKE ?", "%"+filter.Email+"%")
	}

	var contacts []model.Contact
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&contacts).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch contacts").
			Int("user_id", int(userID)).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	logger.DebugWithContext(ctx, "Contacts retrieved successfully").
		Int("user_id", int(userID)).
		Int("returned_count", len(contacts)).
		Duration(time.Since(start)).
		Log()

	return contacts, nil
}

// GetByID returns the contact only if it belongs to userID.
func (r *ContactRepository) GetByID(ctx context.Context, id, userID uint) (*model.Contact, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByID")

	start := time.Now()
	var contact model.Contact

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&contact)
	duration := time.Since(start)

	if result.Error != nil {
		logger.DebugWithContext(ctx, "Contact lookup failed").
			Int("contact_id", int(id)).
			Int("user_id", int(userID)).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &contact, nil
}

func (r *ContactRepository) Create(ctx context.Context, contact *model.Contact) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Create")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(contact)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create contact").
			Int("user_id", int(contact.UserID)).
			String("phone_number", contact.PhoneNumber).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "Contact created successfully").
		Int("contact_id", int(contact.ID)).
		Int("user_id", int(contact.UserID)).
		Duration(duration).
		Log()

	return nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *model.Contact) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Update")

	start := time.Now()
	result := r.db.WithContext(ctx).Save(contact)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update contact").
			Int("contact_id", int(contact.ID)).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "Contact updated successfully").
		Int("contact_id", int(contact.ID)).
		Duration(duration).
		Log()

	return nil
}

// Delete removes the contact row only if it belongs to userID. The model
// carries no DeletedAt column, so this issues a plain DELETE and the
// phone number is immediately reusable.
func (r *ContactRepository) Delete(ctx context.Context, id, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Delete")

	start := time.Now()
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Contact{})
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete contact").
			Int("contact_id", int(id)).
			Int("user_id", int(userID)).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Contact deleted successfully").
		Int("contact_id", int(id)).
		Int("user_id", int(userID)).
		Duration(duration).
		Log()

	return nil
}

// monthDay is one calendar day of the birthday window, year ignored.
type monthDay struct {
	Month int
	Day   int
}

// birthdayWindow enumerates the (month, day) pairs of [from, from+days].
func birthdayWindow(from time.Time, days int) []monthDay {
	pairs := make([]monthDay, 0, days+1)
	for i := 0; i <= days; i++ {
		d := from.AddDate(0, 0, i)
		pairs = append(pairs, monthDay{Month: int(d.Month()), Day: d.Day()})
	}
	return pairs
}

// BirthdaysSoon returns the owner's contacts whose birthday falls on one
// of the next days inclusive of today. Matching on (month, day) pairs
// keeps the window correct across month and year boundaries.
func (r *ContactRepository) BirthdaysSoon(ctx context.Context, userID uint, from time.Time, days, offset, limit int) ([]model.Contact, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "BirthdaysSoon")

	logger.DebugWithContext(ctx, "Getting upcoming birthdays").
		Int("user_id", int(userID)).
		Int("days", days).
		Log()

	start := time.Now()
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	window := r.db.Session(&gorm.Session{NewDB: true})
	for _, md := range birthdayWindow(from, days) {
		window = window.Or(
			"EXTRACT(MONTH FROM birthdate) = ? AND EXTRACT(DAY FROM birthdate) = ?",
			md.Month, md.Day,
		)
	}
	query = query.Where(window)

	var contacts []model.Contact
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&contacts).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch upcoming birthdays").
			Int("user_id", int(userID)).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	logger.DebugWithContext(ctx, "Upcoming birthdays retrieved").
		Int("user_id", int(userID)).
		Int("returned_count", len(contacts)).
		Duration(time.Since(start)).
		Log()

	return contacts, nil
}
