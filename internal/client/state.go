package client

import (
	"slices"
	"time"

	"storefront/internal/orders"
	"storefront/internal/products"
	"storefront/internal/users"
)

// NotificationTTL is how long a notification stays visible.
const NotificationTTL = 4 * time.Second

type Session int

const (
	LoggedOut Session = iota
	LoggedIn
)

func (s Session) String() string {
	if s == LoggedIn {
		return "logged-in"
	}
	return "logged-out"
}

type Modal int

const (
	ModalNone Modal = iota
	ModalLogin
	ModalSignup
	ModalProfile
)

func (m Modal) String() string {
	switch m {
	case ModalLogin:
		return "login"
	case ModalSignup:
		return "signup"
	case ModalProfile:
		return "profile"
	default:
		return "none"
	}
}

type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

type Notification struct {
	ID        int
	Kind      NoticeKind
	Message   string
	ExpiresAt time.Time
}

// WelcomeBonus is shown once after a successful signup.
type WelcomeBonus struct {
	Discount int
	Code     string
}

// User is the signed in identity. It is filled from the token claims on
// startup and replaced by the full profile once that is loaded.
type User struct {
	ID    int64
	Email string
	Name  string
}

// ViewState is everything a renderer needs. Controller hands out copies.
type ViewState struct {
	Session       Session
	User          *User
	Profile       *users.Customer
	Modal         Modal
	FieldErrors   FieldErrors
	Products      []products.Product
	Favorites     []int64
	Orders        []orders.Order
	Notifications []Notification
	Bonus         *WelcomeBonus
}

func (s ViewState) clone() ViewState {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	if s.Bonus != nil {
		b := *s.Bonus
		out.Bonus = &b
	}
	if s.FieldErrors != nil {
		out.FieldErrors = make(FieldErrors, len(s.FieldErrors))
		for k, v := range s.FieldErrors {
			out.FieldErrors[k] = v
		}
	}
	out.Products = slices.Clone(s.Products)
	out.Favorites = slices.Clone(s.Favorites)
	out.Orders = slices.Clone(s.Orders)
	out.Notifications = slices.Clone(s.Notifications)
	return out
}

// Transitions. They only touch the in-memory state.

func (s *ViewState) signIn(u User) {
	s.Session = LoggedIn
	s.User = &u
}

func (s *ViewState) signOut() {
	s.Session = LoggedOut
	s.User = nil
	s.Profile = nil
	s.Favorites = nil
	s.Orders = nil
	s.Bonus = nil
	if s.Modal == ModalProfile {
		s.Modal = ModalNone
	}
}

func (s *ViewState) open(m Modal) {
	s.Modal = m
	s.FieldErrors = nil
}

func (s *ViewState) close() {
	s.Modal = ModalNone
	s.FieldErrors = nil
}

func (s *ViewState) setProfile(c users.Customer) {
	s.Profile = &c
	s.User = &User{ID: c.ID, Email: c.Email, Name: c.Name}
	s.Favorites = slices.Clone(c.FavoriteIDs)
}

// pruneNotifications drops notifications that expired at or before now.
func (s *ViewState) pruneNotifications(now time.Time) {
	s.Notifications = slices.DeleteFunc(s.Notifications, func(n Notification) bool {
		return !now.Before(n.ExpiresAt)
	})
}
