package users

import (
	"time"

	"storefront/internal/stores/jsonstore"
)

// NewCustomer is the signup request.
type NewCustomer struct {
	Name              string `json:"nome" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"telefone" validate:"required"`
	Password          string `json:"senha" validate:"required"`
	ConfirmPassword   string `json:"confirmarSenha" validate:"required,eqfield=Password"`
	AcceptsTerms      bool   `json:"aceitaTermos"`
	AcceptsNewsletter bool   `json:"aceitaNewsletter"`
}

// Credentials is the login request. Remember is only meaningful to the
// client, which decides whether to keep the token.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"senha" validate:"required"`
	Remember bool   `json:"lembrarLogin"`
}

// ProfileUpdate changes only the fields that are set. Empty strings count
// as unset.
type ProfileUpdate struct {
	Name              *string `json:"nome"`
	Phone             *string `json:"telefone"`
	AcceptsNewsletter *bool   `json:"aceitaNewsletter"`
}

// Customer is the public view of a stored customer. The password hash never
// leaves the package.
type Customer struct {
	ID                int64     `json:"id"`
	Name              string    `json:"nome"`
	Email             string    `json:"email"`
	Phone             string    `json:"telefone"`
	AcceptsNewsletter bool      `json:"aceitaNewsletter"`
	CreatedAt         time.Time `json:"dataCadastro"`
	LastAccessAt      time.Time `json:"ultimoAcesso"`
	Status            string    `json:"status"`
	OrderIDs          []int64   `json:"pedidos"`
	FavoriteIDs       []int64   `json:"favoritos"`
}

// Session is what signup and login hand back: the customer and a fresh token.
type Session struct {
	Customer Customer
	Token    string
}

// SignupResult adds the welcome offer shown after a first signup.
type SignupResult struct {
	Session
	WelcomeDiscount int
	DiscountCode    string
}

func toCustomer(c *jsonstore.Customer) Customer {
	return Customer{
		ID:                c.ID,
		Name:              c.Name,
		Email:             c.Email,
		Phone:             c.Phone,
		AcceptsNewsletter: c.AcceptsNewsletter,
		CreatedAt:         c.CreatedAt,
		LastAccessAt:      c.LastAccessAt,
		Status:            c.Status,
		OrderIDs:          append([]int64{}, c.OrderIDs...),
		FavoriteIDs:       append([]int64{}, c.FavoriteIDs...),
	}
}
