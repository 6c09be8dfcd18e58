package contacts

import (
	"context"
	"fmt"
	"time"
)

// birthdayWindowDays is the number of days ahead (inclusive) covered by the
// upcoming-birthdays query.
const birthdayWindowDays = 7

// Service wraps contact business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create persists a new contact tied to the owning user.
func (s *Service) Create(ctx context.Context, userID int64, req UpsertContactRequest) (*Contact, error) {
	birthday, err := req.birthday()
	if err != nil {
		return nil, fmt.Errorf("parse birthday: %w", err)
	}
	contact := Contact{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  birthday,
	}
	id, err := s.repo.Create(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	contact.ID = id
	return &contact, nil
}

// Get fetches one of the user's contacts.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Contact, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List returns a page of the user's contacts plus the total count.
func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]Contact, int, error) {
	return s.repo.List(ctx, userID, limit, offset)
}

// Update replaces a contact owned by the user.
func (s *Service) Update(ctx context.Context, userID, id int64, req UpsertContactRequest) (*Contact, error) {
	birthday, err := req.birthday()
	if err != nil {
		return nil, fmt.Errorf("parse birthday: %w", err)
	}
	contact := Contact{
		ID:        id,
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  birthday,
	}
	if err := s.repo.Update(ctx, userID, id, contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// Delete removes a contact owned by the user and returns the deleted record.
func (s *Service) Delete(ctx context.Context, userID, id int64) (*Contact, error) {
	return s.repo.Delete(ctx, userID, id)
}

// UpcomingBirthdays returns the user's contacts whose birthday falls within
// the next week. The window is computed day by day so it crosses month and
// year boundaries correctly (Jan 28 includes Feb 3, Dec 29 includes Jan 2).
func (s *Service) UpcomingBirthdays(ctx context.Context, userID int64) ([]Contact, error) {
	return s.repo.UpcomingBirthdays(ctx, userID, BirthdayWindow(s.now(), birthdayWindowDays))
}

// BirthdayWindow lists the calendar days from today through today+days
// inclusive.
func BirthdayWindow(from time.Time, days int) []MonthDay {
	window := make([]MonthDay, 0, days+1)
	for i := 0; i <= days; i++ {
		d := from.AddDate(0, 0, i)
		window = append(window, MonthDay{Month: d.Month(), Day: d.Day()})
	}
	return window
}
