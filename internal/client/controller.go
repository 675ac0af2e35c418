package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront/internal/orders"
	"storefront/internal/users"
	"storefront/pkg/logkey"
)

var (
	// ErrInvalidForm is returned when inline validation rejected a form;
	// the messages are in ViewState.FieldErrors.
	ErrInvalidForm = errors.New("form has invalid fields")
	// ErrLoginRequired is returned by actions that need a signed in customer.
	ErrLoginRequired = errors.New("login required")
)

type Option func(*Controller)

// WithClock replaces time.Now, which decides when notifications expire.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns the client state and drives the API on user actions.
type Controller struct {
	api     *API
	storage Storage
	now     func() time.Time

	mu         sync.Mutex
	state      ViewState
	token      string
	nextNotice int
}

func NewController(api *API, storage Storage, opts ...Option) *Controller {
	c := &Controller{api: api, storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot with expired notifications removed.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.pruneNotifications(c.now())
	return c.state.clone()
}

// Token is the token of the current session, if any.
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Start restores a remembered session and loads the catalog. A stored token
// the server rejects is removed.
func (c *Controller) Start(ctx context.Context) error {
	token, ok, err := c.storage.Get(TokenKey)
	if err != nil {
		return fmt.Errorf("read stored token: %w", err)
	}
	if ok && token != "" {
		claims, err := c.api.VerifyToken(ctx, token)
		if err != nil {
			slog.Warn("stored token rejected", slog.String(logkey.ERROR, err.Error()))
			c.clearSession()
		} else {
			c.mu.Lock()
			c.token = token
			c.state.signIn(User{ID: claims.ID, Email: claims.Email, Name: claims.Name})
			c.mu.Unlock()
		}
	}
	return c.LoadProducts(ctx)
}

func (c *Controller) LoadProducts(ctx context.Context) error {
	list, err := c.api.Products(ctx)
	if err != nil {
		c.notifyError("Could not load products", err)
		return err
	}
	c.mu.Lock()
	c.state.Products = list
	c.mu.Unlock()
	return nil
}

// OpenModal shows m. The profile modal needs a session and loads the
// profile before it opens.
func (c *Controller) OpenModal(ctx context.Context, m Modal) error {
	if m == ModalProfile {
		if err := c.LoadProfile(ctx); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.state.open(m)
	c.mu.Unlock()
	return nil
}

func (c *Controller) CloseModal() {
	c.mu.Lock()
	c.state.close()
	c.mu.Unlock()
}

// Login signs in. The token is written to storage only when remember is set.
func (c *Controller) Login(ctx context.Context, email, password string, remember bool) error {
	creds := users.Credentials{Email: strings.TrimSpace(email), Password: password, Remember: remember}
	if errs := ValidateLogin(creds); len(errs) > 0 {
		c.setFieldErrors(errs)
		return ErrInvalidForm
	}

	res, err := c.api.Login(ctx, creds)
	if err != nil {
		c.notifyError("Login failed", err)
		return err
	}
	if remember {
		if err := c.storage.Set(TokenKey, res.Customer.Token); err != nil {
			slog.Error("saving token", slog.String(logkey.ERROR, err.Error()))
		}
	}

	c.mu.Lock()
	c.token = res.Customer.Token
	c.state.setProfile(res.Customer.Customer)
	c.state.Session = LoggedIn
	c.state.close()
	c.mu.Unlock()

	c.notify(NoticeSuccess, fmt.Sprintf("Welcome back, %s!", res.Customer.Name))
	return nil
}

// Signup registers a customer, stores the token and shows the welcome bonus.
func (c *Controller) Signup(ctx context.Context, nc users.NewCustomer) error {
	nc.Name = strings.TrimSpace(nc.Name)
	nc.Email = strings.TrimSpace(nc.Email)
	nc.Phone = FormatPhone(nc.Phone)
	if errs := ValidateSignup(nc); len(errs) > 0 {
		c.setFieldErrors(errs)
		return ErrInvalidForm
	}

	res, err := c.api.Signup(ctx, nc)
	if err != nil {
		c.notifyError("Signup failed", err)
		return err
	}
	if err := c.storage.Set(TokenKey, res.Customer.Token); err != nil {
		slog.Error("saving token", slog.String(logkey.ERROR, err.Error()))
	}

	c.mu.Lock()
	c.token = res.Customer.Token
	c.state.setProfile(res.Customer.Customer)
	c.state.Session = LoggedIn
	c.state.close()
	c.state.Bonus = &WelcomeBonus{Discount: res.Discount, Code: res.DiscountCode}
	c.mu.Unlock()

	c.notify(NoticeSuccess, "Account created successfully!")
	return nil
}

func (c *Controller) DismissBonus() {
	c.mu.Lock()
	c.state.Bonus = nil
	c.mu.Unlock()
}

// Logout forgets the session locally and in storage.
func (c *Controller) Logout() {
	c.clearSession()
	c.notify(NoticeSuccess, "Logged out successfully")
}

func (c *Controller) LoadProfile(ctx context.Context) error {
	token, user, err := c.session()
	if err != nil {
		return err
	}
	profile, err := c.api.Customer(ctx, token, user.Email)
	if err != nil {
		c.handleAuthError(err)
		c.notifyError("Could not load profile", err)
		return err
	}
	c.mu.Lock()
	c.state.setProfile(profile)
	c.mu.Unlock()
	return nil
}

// UpdateProfile sends the changed fields. The phone, when set, is
// reformatted first.
func (c *Controller) UpdateProfile(ctx context.Context, upd users.ProfileUpdate) error {
	token, user, err := c.session()
	if err != nil {
		return err
	}
	if upd.Phone != nil {
		phone := FormatPhone(*upd.Phone)
		upd.Phone = &phone
	}
	profile, err := c.api.UpdateProfile(ctx, token, user.Email, upd)
	if err != nil {
		c.handleAuthError(err)
		c.notifyError("Could not update profile", err)
		return err
	}
	c.mu.Lock()
	c.state.setProfile(profile)
	c.mu.Unlock()
	c.notify(NoticeSuccess, "Profile updated successfully!")
	return nil
}

func (c *Controller) AddFavorite(ctx context.Context, productID int64) error {
	token, user, err := c.requireLogin("You need to be logged in to add favorites")
	if err != nil {
		return err
	}
	favorites, err := c.api.AddFavorite(ctx, token, user.Email, productID)
	if err != nil {
		c.handleAuthError(err)
		c.notifyError("Could not add favorite", err)
		return err
	}
	c.mu.Lock()
	c.state.Favorites = favorites
	c.mu.Unlock()
	c.notify(NoticeSuccess, "Product added to favorites!")
	return nil
}

func (c *Controller) RemoveFavorite(ctx context.Context, productID int64) error {
	token, user, err := c.requireLogin("You need to be logged in to manage favorites")
	if err != nil {
		return err
	}
	favorites, err := c.api.RemoveFavorite(ctx, token, user.Email, productID)
	if err != nil {
		c.handleAuthError(err)
		c.notifyError("Could not remove favorite", err)
		return err
	}
	c.mu.Lock()
	c.state.Favorites = favorites
	c.mu.Unlock()
	c.notify(NoticeSuccess, "Product removed from favorites!")
	return nil
}

// Buy orders quantity units of a single product and refreshes the catalog so
// the new stock shows.
func (c *Controller) Buy(ctx context.Context, productID int64, quantity int) (orders.Order, error) {
	token, user, err := c.requireLogin("You need to be logged in to make a purchase")
	if err != nil {
		return orders.Order{}, err
	}
	if quantity < 1 {
		quantity = 1
	}
	order, err := c.api.PlaceOrder(ctx, token, user.Email, orders.NewOrder{
		Items: []orders.ItemRequest{{ProductID: productID, Quantity: quantity}},
	})
	if err != nil {
		c.handleAuthError(err)
		c.notifyError("Could not place order", err)
		return orders.Order{}, err
	}

	c.mu.Lock()
	c.state.Orders = append(c.state.Orders, order)
	c.mu.Unlock()
	c.notify(NoticeSuccess, "Order placed successfully!")

	if err := c.LoadProducts(ctx); err != nil {
		slog.Warn("refreshing products after order", slog.String(logkey.ERROR, err.Error()))
	}
	return order, nil
}

func (c *Controller) LoadOrders(ctx context.Context) error {
	token, user, err := c.session()
	if err != nil {
		return err
	}
	list, err := c.api.Orders(ctx, token, user.Email)
	if err != nil {
		c.handleAuthError(err)
		c.notifyError("Could not load orders", err)
		return err
	}
	c.mu.Lock()
	c.state.Orders = list
	c.mu.Unlock()
	return nil
}

func (c *Controller) session() (string, User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Session != LoggedIn || c.state.User == nil {
		return "", User{}, ErrLoginRequired
	}
	return c.token, *c.state.User, nil
}

// requireLogin opens the login modal with an error notice when no one is
// signed in.
func (c *Controller) requireLogin(message string) (string, User, error) {
	token, user, err := c.session()
	if err == nil {
		return token, user, nil
	}
	c.mu.Lock()
	c.state.open(ModalLogin)
	c.mu.Unlock()
	c.notify(NoticeError, message)
	return "", User{}, err
}

// handleAuthError drops the session when the server no longer accepts the
// token.
func (c *Controller) handleAuthError(err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		c.clearSession()
	}
}

func (c *Controller) clearSession() {
	if err := c.storage.Delete(TokenKey); err != nil {
		slog.Error("removing token", slog.String(logkey.ERROR, err.Error()))
	}
	c.mu.Lock()
	c.token = ""
	c.state.signOut()
	c.mu.Unlock()
}

func (c *Controller) setFieldErrors(errs FieldErrors) {
	c.mu.Lock()
	c.state.FieldErrors = errs
	c.mu.Unlock()
}

func (c *Controller) notify(kind NoticeKind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.state.pruneNotifications(now)
	c.nextNotice++
	c.state.Notifications = append(c.state.Notifications, Notification{
		ID:        c.nextNotice,
		Kind:      kind,
		Message:   message,
		ExpiresAt: now.Add(NotificationTTL),
	})
}

// notifyError shows the server's message when there is one, fallback
// otherwise.
func (c *Controller) notifyError(fallback string, err error) {
	message := fallback
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	c.notify(NoticeError, message)
}
