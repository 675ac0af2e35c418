package users

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	"storefront/internal/stores/jsonstore"
	"storefront/internal/stores/kafka"
	"storefront/pkg/apperr"
)

type fakeProducer struct {
	mu     sync.Mutex
	topics []string
}

func (f *fakeProducer) ProduceMessage(topic string, key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	return nil
}

func (f *fakeProducer) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.topics...)
}

func setup(t *testing.T, producer kafka.Producer) (*Conf, *jsonstore.Store) {
	t.Helper()
	s := jsonstore.New(filepath.Join(t.TempDir(), "database.json"))
	require.NoError(t, s.Init(context.Background()))
	keys, err := auth.NewKeys([]byte("test-secret"), 0)
	require.NoError(t, err)
	c, err := NewConf(s, keys, producer)
	require.NoError(t, err)
	return c, s
}

func validSignup() NewCustomer {
	return NewCustomer{
		Name:              "Ana Souza",
		Email:             "ana@example.com",
		Phone:             "(11) 98765-4321",
		Password:          "segredo1",
		ConfirmPassword:   "segredo1",
		AcceptsTerms:      true,
		AcceptsNewsletter: true,
	}
}

func mustSignup(t *testing.T, c *Conf) SignupResult {
	t.Helper()
	res, err := c.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	return res
}

func TestSignup(t *testing.T) {
	producer := &fakeProducer{}
	c, s := setup(t, producer)

	res := mustSignup(t, c)

	assert.NotZero(t, res.Customer.ID)
	assert.Equal(t, "ana@example.com", res.Customer.Email)
	assert.Equal(t, jsonstore.CustomerStatusActive, res.Customer.Status)
	assert.Empty(t, res.Customer.OrderIDs)
	assert.Empty(t, res.Customer.FavoriteIDs)
	assert.Equal(t, 10, res.WelcomeDiscount)
	assert.Equal(t, "WELCOME10", res.DiscountCode)

	claims, err := c.keys.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Customer.ID, claims.ID)
	assert.Equal(t, "Ana Souza", claims.Name)

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Customers, 1)
	assert.NotEqual(t, "segredo1", doc.Customers[0].PasswordHash)
	assert.True(t, auth.CheckPassword("segredo1", doc.Customers[0].PasswordHash))

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{kafka.TopicCustomerCreated}, producer.seen())
	}, time.Second, 5*time.Millisecond)
}

func TestSignupDuplicateEmailLeavesStoreUnchanged(t *testing.T) {
	c, s := setup(t, nil)
	mustSignup(t, c)

	dup := validSignup()
	dup.Name = "Another"
	_, err := c.Signup(context.Background(), dup)
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc.Customers, 1)
	assert.Equal(t, "Ana Souza", doc.Customers[0].Name)
}

func TestSignupDuplicateEmailSkipsHashing(t *testing.T) {
	c, _ := setup(t, nil)
	mustSignup(t, c)

	hashed := 0
	c.hash = func(pw string) (string, error) {
		hashed++
		return auth.HashPassword(pw)
	}
	_, err := c.Signup(context.Background(), validSignup())
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
	assert.Zero(t, hashed)

	other := validSignup()
	other.Email = "bia@example.com"
	_, err = c.Signup(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 1, hashed)
}

func TestSignupValidationHappensBeforeAnyWrite(t *testing.T) {
	cases := map[string]func(*NewCustomer){
		"password mismatch": func(n *NewCustomer) { n.ConfirmPassword = "outra123" },
		"terms refused":     func(n *NewCustomer) { n.AcceptsTerms = false },
		"missing name":      func(n *NewCustomer) { n.Name = "   " },
		"missing phone":     func(n *NewCustomer) { n.Phone = "" },
		"missing password":  func(n *NewCustomer) { n.Password, n.ConfirmPassword = "", "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c, s := setup(t, nil)
			before, err := os.ReadFile(s.Path())
			require.NoError(t, err)

			nc := validSignup()
			mutate(&nc)
			_, err = c.Signup(context.Background(), nc)
			assert.ErrorIs(t, err, apperr.ErrValidation)

			after, err := os.ReadFile(s.Path())
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestLoginUpdatesLastAccessStrictly(t *testing.T) {
	c, _ := setup(t, nil)
	frozen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return frozen }
	res := mustSignup(t, c)

	prev := res.Customer.LastAccessAt
	for i := 0; i < 3; i++ {
		session, err := c.Login(context.Background(), "ana@example.com", "segredo1")
		require.NoError(t, err)
		assert.True(t, session.Customer.LastAccessAt.After(prev), "last access must strictly increase")
		assert.NotEmpty(t, session.Token)
		prev = session.Customer.LastAccessAt
	}

	stored, err := c.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.True(t, stored.LastAccessAt.Equal(prev))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	c, _ := setup(t, nil)
	mustSignup(t, c)

	_, errUnknown := c.Login(context.Background(), "nobody@example.com", "segredo1")
	_, errWrong := c.Login(context.Background(), "ana@example.com", "wrong-pass")

	require.ErrorIs(t, errUnknown, apperr.ErrInvalidCredentials)
	require.ErrorIs(t, errWrong, apperr.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())

	_, err := c.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetByEmail(t *testing.T) {
	c, _ := setup(t, nil)
	mustSignup(t, c)

	cust, err := c.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", cust.Name)
	assert.NotNil(t, cust.OrderIDs)
	assert.NotNil(t, cust.FavoriteIDs)

	_, err = c.GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateProfileIsPartial(t *testing.T) {
	c, _ := setup(t, nil)
	mustSignup(t, c)
	ctx := context.Background()

	phone := "(21) 3333-4444"
	cust, err := c.UpdateProfile(ctx, "ana@example.com", ProfileUpdate{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", cust.Name)
	assert.Equal(t, phone, cust.Phone)
	assert.True(t, cust.AcceptsNewsletter)

	off := false
	empty := ""
	cust, err = c.UpdateProfile(ctx, "ana@example.com", ProfileUpdate{Name: &empty, AcceptsNewsletter: &off})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", cust.Name)
	assert.False(t, cust.AcceptsNewsletter)

	_, err = c.UpdateProfile(ctx, "missing@example.com", ProfileUpdate{Phone: &phone})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddFavoriteRejectsDuplicates(t *testing.T) {
	c, _ := setup(t, nil)
	mustSignup(t, c)
	ctx := context.Background()

	favs, err := c.AddFavorite(ctx, "ana@example.com", 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, favs)

	_, err = c.AddFavorite(ctx, "ana@example.com", 1)
	assert.ErrorIs(t, err, apperr.ErrAlreadyFavorite)

	cust, err := c.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, cust.FavoriteIDs)
}

func TestAddFavoriteNotFound(t *testing.T) {
	c, _ := setup(t, nil)
	mustSignup(t, c)
	ctx := context.Background()

	_, err := c.AddFavorite(ctx, "ana@example.com", 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = c.AddFavorite(ctx, "missing@example.com", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFavoriteRoundTrip(t *testing.T) {
	c, _ := setup(t, nil)
	mustSignup(t, c)
	ctx := context.Background()

	_, err := c.AddFavorite(ctx, "ana@example.com", 3)
	require.NoError(t, err)
	before, err := c.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)

	_, err = c.AddFavorite(ctx, "ana@example.com", 2)
	require.NoError(t, err)
	favs, err := c.RemoveFavorite(ctx, "ana@example.com", 2)
	require.NoError(t, err)
	assert.Equal(t, before.FavoriteIDs, favs)

	_, err = c.RemoveFavorite(ctx, "ana@example.com", 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = c.RemoveFavorite(ctx, "missing@example.com", 3)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
