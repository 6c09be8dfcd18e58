package contacts

import "time"

const birthdayLayout = "2006-01-02"

// UpsertContactRequest is the payload for both create and full update.
type UpsertContactRequest struct {
	FirstName string `json:"firstname" validate:"required,max=100"`
	LastName  string `json:"lastname" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,max=50"`
	Birthday  string `json:"birthday" validate:"required,datetime=2006-01-02"`
}

// ContactResponse is the public view of a contact.
type ContactResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Birthday  string `json:"birthday"`
}

// ListResponse wraps a contact page with its total count.
type ListResponse struct {
	Contacts []ContactResponse `json:"contacts"`
	Total    int               `json:"total"`
}

// NewContactResponse maps a domain contact to its public view.
func NewContactResponse(c Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Birthday:  c.Birthday.Format(birthdayLayout),
	}
}

// NewContactResponses maps a slice of contacts, never returning nil.
func NewContactResponses(list []Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(list))
	for _, c := range list {
		out = append(out, NewContactResponse(c))
	}
	return out
}

func (r UpsertContactRequest) birthday() (time.Time, error) {
	return time.Parse(birthdayLayout, r.Birthday)
}
