package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/handlers"
	"storefront/internal/auth"
	"storefront/internal/orders"
	"storefront/internal/products"
	"storefront/internal/stores/jsonstore"
	"storefront/internal/users"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type fixture struct {
	api     *API
	storage *FileStorage
	clock   *fakeClock
	store   *jsonstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	s := jsonstore.New(filepath.Join(dir, "database.json"))
	require.NoError(t, s.Init(context.Background()))

	keys, err := auth.NewKeys([]byte("client-secret"), 0)
	require.NoError(t, err)
	p, err := products.NewConf(s)
	require.NoError(t, err)
	u, err := users.NewConf(s, keys, nil)
	require.NoError(t, err)
	o, err := orders.NewConf(s, nil)
	require.NoError(t, err)
	engine, err := handlers.API(p, u, o, keys, gin.TestMode)
	require.NoError(t, err)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	return &fixture{
		api:     NewAPI(srv.URL, srv.Client()),
		storage: NewFileStorage(filepath.Join(dir, "client.json")),
		clock:   &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)},
		store:   s,
	}
}

func (f *fixture) controller() *Controller {
	return NewController(f.api, f.storage, WithClock(f.clock.Now))
}

func newCustomer(email string) users.NewCustomer {
	return users.NewCustomer{
		Name:            "Ana Souza",
		Email:           email,
		Phone:           "11987654321",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		AcceptsTerms:    true,
	}
}

func storedToken(t *testing.T, f *fixture) (string, bool) {
	t.Helper()
	tok, ok, err := f.storage.Get(TokenKey)
	require.NoError(t, err)
	return tok, ok
}

func TestStartLoggedOut(t *testing.T) {
	f := newFixture(t)
	c := f.controller()

	require.NoError(t, c.Start(context.Background()))
	s := c.State()
	assert.Equal(t, LoggedOut, s.Session)
	assert.Equal(t, ModalNone, s.Modal)
	assert.Len(t, s.Products, 3)
}

func TestActionsRequireLogin(t *testing.T) {
	f := newFixture(t)
	c := f.controller()
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	err := c.AddFavorite(ctx, 1)
	assert.ErrorIs(t, err, ErrLoginRequired)
	s := c.State()
	assert.Equal(t, ModalLogin, s.Modal)
	require.Len(t, s.Notifications, 1)
	assert.Equal(t, NoticeError, s.Notifications[0].Kind)

	c.CloseModal()
	_, err = c.Buy(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, ModalLogin, c.State().Modal)

	assert.ErrorIs(t, c.OpenModal(ctx, ModalProfile), ErrLoginRequired)
}

func TestSignupStoresTokenAndShowsBonus(t *testing.T) {
	f := newFixture(t)
	c := f.controller()
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.OpenModal(ctx, ModalSignup))

	require.NoError(t, c.Signup(ctx, newCustomer("ana@example.com")))

	s := c.State()
	assert.Equal(t, LoggedIn, s.Session)
	assert.Equal(t, ModalNone, s.Modal)
	require.NotNil(t, s.User)
	assert.Equal(t, "ana@example.com", s.User.Email)
	require.NotNil(t, s.Profile)
	assert.Equal(t, "(11) 98765-4321", s.Profile.Phone)
	require.NotNil(t, s.Bonus)
	assert.Equal(t, 10, s.Bonus.Discount)
	assert.Equal(t, "WELCOME10", s.Bonus.Code)

	tok, ok := storedToken(t, f)
	assert.True(t, ok)
	assert.Equal(t, c.Token(), tok)

	c.DismissBonus()
	assert.Nil(t, c.State().Bonus)
}

func TestSignupInlineValidation(t *testing.T) {
	f := newFixture(t)
	c := f.controller()
	ctx := context.Background()

	nc := newCustomer("ana@example.com")
	nc.ConfirmPassword = "other12"
	assert.ErrorIs(t, c.Signup(ctx, nc), ErrInvalidForm)
	assert.Contains(t, c.State().FieldErrors, "confirmarSenha")

	doc, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Customers)
}

func TestSignupServerError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.controller().Signup(ctx, newCustomer("ana@example.com")))

	c := f.controller()
	err := c.Signup(ctx, newCustomer("ana@example.com"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)

	s := c.State()
	assert.Equal(t, LoggedOut, s.Session)
	require.Len(t, s.Notifications, 1)
	assert.Equal(t, "This email is already registered", s.Notifications[0].Message)
}

func TestLoginRememberControlsStorage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signup := f.controller()
	require.NoError(t, signup.Signup(ctx, newCustomer("ana@example.com")))
	signup.Logout()
	_, ok := storedToken(t, f)
	require.False(t, ok)

	c := f.controller()
	require.NoError(t, c.Login(ctx, "ana@example.com", "secret1", false))
	assert.Equal(t, LoggedIn, c.State().Session)
	_, ok = storedToken(t, f)
	assert.False(t, ok)

	c.Logout()
	require.NoError(t, c.Login(ctx, "ana@example.com", "secret1", true))
	tok, ok := storedToken(t, f)
	assert.True(t, ok)
	assert.Equal(t, c.Token(), tok)

	c.Logout()
	assert.Equal(t, LoggedOut, c.State().Session)
	assert.Empty(t, c.Token())
	_, ok = storedToken(t, f)
	assert.False(t, ok)
}

func TestLoginFailure(t *testing.T) {
	f := newFixture(t)
	c := f.controller()
	ctx := context.Background()

	assert.ErrorIs(t, c.Login(ctx, "not-an-email", "secret1", false), ErrInvalidForm)

	err := c.Login(ctx, "nobody@example.com", "secret1", false)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, LoggedOut, c.State().Session)
}

func TestStartRestoresRememberedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.controller().Signup(ctx, newCustomer("ana@example.com")))

	c := f.controller()
	require.NoError(t, c.Start(ctx))
	s := c.State()
	assert.Equal(t, LoggedIn, s.Session)
	require.NotNil(t, s.User)
	assert.Equal(t, "Ana Souza", s.User.Name)
}

func TestStartClearsRejectedToken(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.storage.Set(TokenKey, "stale.token.value"))

	c := f.controller()
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, LoggedOut, c.State().Session)
	_, ok := storedToken(t, f)
	assert.False(t, ok)
}

func TestNotificationsExpire(t *testing.T) {
	f := newFixture(t)
	c := f.controller()
	ctx := context.Background()

	_ = c.AddFavorite(ctx, 1)
	require.Len(t, c.State().Notifications, 1)

	f.clock.Advance(NotificationTTL - time.Millisecond)
	assert.Len(t, c.State().Notifications, 1)

	f.clock.Advance(time.Millisecond)
	assert.Empty(t, c.State().Notifications)
}

func TestFavoritesAndBuy(t *testing.T) {
	f := newFixture(t)
	c := f.controller()
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Signup(ctx, newCustomer("ana@example.com")))

	require.NoError(t, c.AddFavorite(ctx, 2))
	assert.Equal(t, []int64{2}, c.State().Favorites)
	assert.Error(t, c.AddFavorite(ctx, 2))
	require.NoError(t, c.RemoveFavorite(ctx, 2))
	assert.Empty(t, c.State().Favorites)

	order, err := c.Buy(ctx, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "6400", order.Total.String())

	s := c.State()
	for _, p := range s.Products {
		if p.ID == 3 {
			assert.Equal(t, 0, p.Stock)
		}
	}

	_, err = c.Buy(ctx, 3, 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)

	require.NoError(t, c.LoadOrders(ctx))
	assert.Len(t, c.State().Orders, 1)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	c := f.controller()
	ctx := context.Background()
	require.NoError(t, c.Signup(ctx, newCustomer("ana@example.com")))

	require.NoError(t, c.OpenModal(ctx, ModalProfile))
	s := c.State()
	assert.Equal(t, ModalProfile, s.Modal)
	require.NotNil(t, s.Profile)

	name := "Ana Lima"
	phone := "1134567890"
	require.NoError(t, c.UpdateProfile(ctx, users.ProfileUpdate{Name: &name, Phone: &phone}))
	s = c.State()
	assert.Equal(t, "Ana Lima", s.Profile.Name)
	assert.Equal(t, "(11) 3456-7890", s.Profile.Phone)
	assert.Equal(t, "Ana Lima", s.User.Name)
}
