package dto

import (
	"time"

	"github.com/contactbook/api/internal/model"
)

type ContactRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=25"`
	Surname     string `json:"surname" binding:"required,min=3,max=25"`
	Email       string `json:"email" binding:"required,email,min=8,max=100"`
	PhoneNumber string `json:"phone_number" binding:"required,min=10,max=20"`
	Birthdate   string `json:"birthdate" binding:"required,datetime=2006-01-02"`
}

// ParseBirthdate is only valid after binding validated the layout.
func (r *ContactRequest) ParseBirthdate() time.Time {
	t, _ := time.Parse("2006-01-02", r.Birthdate)
	return t
}

type ContactResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Birthdate   string `json:"birthdate"`
}

func NewContactResponse(contact *model.Contact) *ContactResponse {
	return &ContactResponse{
		ID:          contact.ID,
		Name:        contact.Name,
		Surname:     contact.Surname,
		Email:       contact.Email,
		PhoneNumber: contact.PhoneNumber,
		Birthdate:   time.Time(contact.Birthdate).Format("2006-01-02"),
	}
}

func NewContactListResponse(contacts []model.Contact) []ContactResponse {
	responses := make([]ContactResponse, 0, len(contacts))
	for i := range contacts {
		responses = append(responses, *NewContactResponse(&contacts[i]))
	}
	return responses
}
