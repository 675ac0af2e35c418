package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/orders"
	"storefront/internal/products"
	"storefront/internal/users"
)

// APIError is a non-2xx answer from the storefront API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront api: %s", http.StatusText(e.Status))
	}
	return e.Message
}

// SessionCustomer is the customer object of signup and login answers.
type SessionCustomer struct {
	users.Customer
	Token string `json:"token"`
}

type SignupResponse struct {
	Message      string          `json:"message"`
	Customer     SessionCustomer `json:"cliente"`
	Discount     int             `json:"desconto"`
	DiscountCode string          `json:"codigoDesconto"`
}

type LoginResponse struct {
	Message  string          `json:"message"`
	Customer SessionCustomer `json:"cliente"`
}

// API calls the storefront HTTP routes.
type API struct {
	baseURL string
	hc      *http.Client
}

// NewAPI returns an API for baseURL. A nil hc uses http.DefaultClient.
func NewAPI(baseURL string, hc *http.Client) *API {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

func (a *API) Products(ctx context.Context) ([]products.Product, error) {
	var list []products.Product
	err := a.do(ctx, http.MethodGet, "/api/produtos", "", nil, &list)
	return list, err
}

func (a *API) Product(ctx context.Context, id int64) (products.Product, error) {
	var p products.Product
	err := a.do(ctx, http.MethodGet, "/api/produto/"+strconv.FormatInt(id, 10), "", nil, &p)
	return p, err
}

func (a *API) Signup(ctx context.Context, nc users.NewCustomer) (SignupResponse, error) {
	var res SignupResponse
	err := a.do(ctx, http.MethodPost, "/api/cadastro", "", nc, &res)
	return res, err
}

func (a *API) Login(ctx context.Context, creds users.Credentials) (LoginResponse, error) {
	var res LoginResponse
	err := a.do(ctx, http.MethodPost, "/api/login", "", creds, &res)
	return res, err
}

// VerifyToken returns the claims the server decoded from token.
func (a *API) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	var res struct {
		User auth.Claims `json:"user"`
	}
	err := a.do(ctx, http.MethodGet, "/api/verify-token", token, nil, &res)
	return res.User, err
}

func (a *API) Customer(ctx context.Context, token, email string) (users.Customer, error) {
	var c users.Customer
	err := a.do(ctx, http.MethodGet, "/api/cliente/"+url.PathEscape(email), token, nil, &c)
	return c, err
}

func (a *API) UpdateProfile(ctx context.Context, token, email string, upd users.ProfileUpdate) (users.Customer, error) {
	var res struct {
		Customer users.Customer `json:"cliente"`
	}
	err := a.do(ctx, http.MethodPut, "/api/cliente/"+url.PathEscape(email), token, upd, &res)
	return res.Customer, err
}

func (a *API) AddFavorite(ctx context.Context, token, email string, productID int64) ([]int64, error) {
	var res struct {
		Favorites []int64 `json:"favoritos"`
	}
	body := map[string]int64{"produtoId": productID}
	err := a.do(ctx, http.MethodPost, "/api/favoritos/"+url.PathEscape(email), token, body, &res)
	return res.Favorites, err
}

func (a *API) RemoveFavorite(ctx context.Context, token, email string, productID int64) ([]int64, error) {
	var res struct {
		Favorites []int64 `json:"favoritos"`
	}
	path := "/api/favoritos/" + url.PathEscape(email) + "/" + strconv.FormatInt(productID, 10)
	err := a.do(ctx, http.MethodDelete, path, token, nil, &res)
	return res.Favorites, err
}

func (a *API) PlaceOrder(ctx context.Context, token, email string, order orders.NewOrder) (orders.Order, error) {
	var res struct {
		Order orders.Order `json:"pedido"`
	}
	err := a.do(ctx, http.MethodPost, "/api/pedido/"+url.PathEscape(email), token, order, &res)
	return res.Order, err
}

func (a *API) Orders(ctx context.Context, token, email string) ([]orders.Order, error) {
	var list []orders.Order
	err := a.do(ctx, http.MethodGet, "/api/pedidos/"+url.PathEscape(email), token, nil, &list)
	return list, err
}

func (a *API) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
