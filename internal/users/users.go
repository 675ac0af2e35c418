package users

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/stores/jsonstore"
	"storefront/internal/stores/kafka"
	"storefront/pkg/apperr"
	"storefront/pkg/ctxmanage"
)

type store interface {
	View(ctx context.Context, fn func(*jsonstore.Document) error) error
	Update(ctx context.Context, fn func(*jsonstore.Document) error) error
	NextID() int64
}

// Conf is the customer service: signup, login, profile and favorites.
type Conf struct {
	store    store
	keys     *auth.Keys
	producer kafka.Producer
	now      func() time.Time
	hash     func(string) (string, error)
}

// NewConf builds the service. producer may be nil to disable events.
func NewConf(s store, keys *auth.Keys, producer kafka.Producer) (*Conf, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if keys == nil {
		return nil, fmt.Errorf("auth keys are nil")
	}
	return &Conf{store: s, keys: keys, producer: producer, now: time.Now, hash: auth.HashPassword}, nil
}

// Signup validates nc, stores a new customer and issues a session token.
// Nothing is written when validation fails or the email is taken.
func (c *Conf) Signup(ctx context.Context, nc NewCustomer) (SignupResult, error) {
	nc.Name = strings.TrimSpace(nc.Name)
	nc.Email = strings.TrimSpace(nc.Email)
	nc.Phone = strings.TrimSpace(nc.Phone)

	if nc.Name == "" || nc.Email == "" || nc.Phone == "" || nc.Password == "" || nc.ConfirmPassword == "" {
		return SignupResult{}, apperr.New(apperr.ErrValidation, "All required fields must be filled in")
	}
	if nc.Password != nc.ConfirmPassword {
		return SignupResult{}, apperr.New(apperr.ErrValidation, "Passwords do not match")
	}
	if !nc.AcceptsTerms {
		return SignupResult{}, apperr.New(apperr.ErrValidation, "You must accept the terms of use")
	}

	// A taken email is rejected before hashing. The check inside Update
	// below is the authoritative one.
	err := c.store.View(ctx, func(d *jsonstore.Document) error {
		if d.CustomerByEmail(nc.Email) != nil {
			return duplicateEmail()
		}
		return nil
	})
	if err != nil {
		return SignupResult{}, err
	}

	hash, err := c.hash(nc.Password)
	if err != nil {
		return SignupResult{}, err
	}

	var result SignupResult
	err = c.store.Update(ctx, func(d *jsonstore.Document) error {
		if d.CustomerByEmail(nc.Email) != nil {
			return duplicateEmail()
		}
		now := c.now().UTC()
		stored := jsonstore.Customer{
			ID:                c.store.NextID(),
			Name:              nc.Name,
			Email:             nc.Email,
			Phone:             nc.Phone,
			PasswordHash:      hash,
			AcceptsNewsletter: nc.AcceptsNewsletter,
			CreatedAt:         now,
			LastAccessAt:      now,
			Status:            jsonstore.CustomerStatusActive,
			OrderIDs:          []int64{},
			FavoriteIDs:       []int64{},
		}
		token, err := c.keys.IssueToken(stored.ID, stored.Email, stored.Name)
		if err != nil {
			return err
		}
		d.Customers = append(d.Customers, stored)

		result = SignupResult{
			Session:         Session{Customer: toCustomer(&stored), Token: token},
			WelcomeDiscount: d.Configuration.WelcomeDiscount,
			DiscountCode:    d.Configuration.DiscountCode,
		}
		return nil
	})
	if err != nil {
		return SignupResult{}, err
	}

	kafka.PublishAsync(c.producer, kafka.TopicCustomerCreated, strconv.FormatInt(result.Customer.ID, 10),
		kafka.CustomerCreatedEvent{
			ID:        result.Customer.ID,
			Name:      result.Customer.Name,
			Email:     result.Customer.Email,
			CreatedAt: result.Customer.CreatedAt,
		}, ctxmanage.GetTraceId(ctx))

	return result, nil
}

// Login checks the credentials and records the access time. Unknown email
// and wrong password produce the same error.
func (c *Conf) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, apperr.New(apperr.ErrValidation, "Email and password are required")
	}
	invalid := apperr.New(apperr.ErrInvalidCredentials, "Incorrect email or password")

	var session Session
	err := c.store.Update(ctx, func(d *jsonstore.Document) error {
		cust := d.CustomerByEmail(email)
		if cust == nil || !auth.CheckPassword(password, cust.PasswordHash) {
			return invalid
		}

		now := c.now().UTC()
		if !now.After(cust.LastAccessAt) {
			now = cust.LastAccessAt.Add(time.Millisecond)
		}
		cust.LastAccessAt = now

		token, err := c.keys.IssueToken(cust.ID, cust.Email, cust.Name)
		if err != nil {
			return err
		}
		session = Session{Customer: toCustomer(cust), Token: token}
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return session, nil
}

// GetByEmail returns the customer profile with order and favorite ids.
func (c *Conf) GetByEmail(ctx context.Context, email string) (Customer, error) {
	var cust Customer
	err := c.store.View(ctx, func(d *jsonstore.Document) error {
		stored := d.CustomerByEmail(email)
		if stored == nil {
			return customerNotFound()
		}
		cust = toCustomer(stored)
		return nil
	})
	return cust, err
}

// UpdateProfile applies the set fields of upd.
func (c *Conf) UpdateProfile(ctx context.Context, email string, upd ProfileUpdate) (Customer, error) {
	var cust Customer
	err := c.store.Update(ctx, func(d *jsonstore.Document) error {
		stored := d.CustomerByEmail(email)
		if stored == nil {
			return customerNotFound()
		}
		if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
			stored.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Phone != nil && strings.TrimSpace(*upd.Phone) != "" {
			stored.Phone = strings.TrimSpace(*upd.Phone)
		}
		if upd.AcceptsNewsletter != nil {
			stored.AcceptsNewsletter = *upd.AcceptsNewsletter
		}
		cust = toCustomer(stored)
		return nil
	})
	return cust, err
}

// AddFavorite appends productID to the customer's favorites and returns the
// new list.
func (c *Conf) AddFavorite(ctx context.Context, email string, productID int64) ([]int64, error) {
	var favorites []int64
	err := c.store.Update(ctx, func(d *jsonstore.Document) error {
		stored := d.CustomerByEmail(email)
		if stored == nil {
			return customerNotFound()
		}
		if d.ProductByID(productID) == nil {
			return apperr.New(apperr.ErrNotFound, "Product not found")
		}
		if slices.Contains(stored.FavoriteIDs, productID) {
			return apperr.New(apperr.ErrAlreadyFavorite, "Product is already in favorites")
		}
		stored.FavoriteIDs = append(stored.FavoriteIDs, productID)
		favorites = append([]int64{}, stored.FavoriteIDs...)
		return nil
	})
	return favorites, err
}

// RemoveFavorite drops productID from the customer's favorites and returns
// the new list.
func (c *Conf) RemoveFavorite(ctx context.Context, email string, productID int64) ([]int64, error) {
	var favorites []int64
	err := c.store.Update(ctx, func(d *jsonstore.Document) error {
		stored := d.CustomerByEmail(email)
		if stored == nil {
			return customerNotFound()
		}
		i := slices.Index(stored.FavoriteIDs, productID)
		if i < 0 {
			return apperr.New(apperr.ErrNotFound, "Product is not in favorites")
		}
		stored.FavoriteIDs = slices.Delete(stored.FavoriteIDs, i, i+1)
		favorites = append([]int64{}, stored.FavoriteIDs...)
		return nil
	})
	return favorites, err
}

func duplicateEmail() error {
	return apperr.New(apperr.ErrDuplicateEmail, "This email is already registered")
}

func customerNotFound() error {
	return apperr.New(apperr.ErrNotFound, "Customer not found")
}
