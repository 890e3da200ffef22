package service

import (
	"context"
	"errors"
	"time"

	"github.com/contactbook/api/internal/dto"
	apperrors "github.com/contactbook/api/internal/errors"
	"github.com/contactbook/api/internal/model"
	"github.com/contactbook/api/internal/repository"
	ctxutil "github.com/contactbook/api/pkg/context"
	"github.com/contactbook/api/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BirthdayWindowDays is the lookahead for the upcoming-birthdays query,
// inclusive of today.
const BirthdayWindowDays = 7

// ContactStore is the slice of the contact repository the service needs.
type ContactStore interface {
	GetAll(ctx context.Context, userID uint, filter repository.ContactFilter, offset, limit int) ([]model.Contact, error)
	GetByID(ctx context.Context, id, userID uint) (*model.Contact, error)
	Create(ctx context.Context, contact *model.Contact) error
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, id, userID uint) error
	BirthdaysSoon(ctx context.Context, userID uint, from time.Time, days, offset, limit int) ([]model.Contact, error)
}

// ContactService owns the contact book. Every operation takes the owner
// explicitly so a contact can never leak across accounts.
type ContactService struct {
	contacts ContactStore
	now      func() time.Time
}

func NewContactService(contacts ContactStore) *ContactService {
	return &ContactService{
		contacts: contacts,
		now:      time.Now,
	}
}

func (s *ContactService) GetAll(ctx context.Context, userID uint, filter repository.ContactFilter, offset, limit int) ([]dto.ContactResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetAll")

	contacts, err := s.contacts.GetAll(ctx, userID, filter, offset, limit)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return dto.NewContactListResponse(contacts), nil
}

func (s *ContactService) GetByID(ctx context.Context, id, userID uint) (*dto.ContactResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetByID")

	contact, err := s.contacts.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrContactNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return dto.NewContactResponse(contact), nil
}

func (s *ContactService) Create(ctx context.Context, userID uint, req *dto.ContactRequest) (*dto.ContactResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Create")

	contact := &model.Contact{
		Name:        req.Name,
		Surname:     req.Surname,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Birthdate:   datatypes.Date(req.ParseBirthdate()),
		UserID:      userID,
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrPhoneExists
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Contact created").
		Int("contact_id", int(contact.ID)).
		Int("user_id", int(userID)).
		Log()

	return dto.NewContactResponse(contact), nil
}

// Update replaces every mutable field of the contact.
func (s *ContactService) Update(ctx context.Context, id, userID uint, req *dto.ContactRequest) (*dto.ContactResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Update")

	contact, err := s.contacts.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrContactNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	contact.Name = req.Name
	contact.Surname = req.Surname
	contact.Email = req.Email
	contact.PhoneNumber = req.PhoneNumber
	contact.Birthdate = datatypes.Date(req.ParseBirthdate())

	if err := s.contacts.Update(ctx, contact); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrPhoneExists
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return dto.NewContactResponse(contact), nil
}

func (s *ContactService) Delete(ctx context.Context, id, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "Delete")

	if err := s.contacts.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrContactNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return nil
}

// BirthdaysSoon lists contacts with a birthday within the next week,
// today included.
func (s *ContactService) BirthdaysSoon(ctx context.Context, userID uint, offset, limit int) ([]dto.ContactResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "BirthdaysSoon")

	contacts, err := s.contacts.BirthdaysSoon(ctx, userID, s.now(), BirthdayWindowDays, offset, limit)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return dto.NewContactListResponse(contacts), nil
}
