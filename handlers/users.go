package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/users"
	"storefront/middleware"
	"storefront/pkg/ctxmanage"
	"storefront/pkg/logkey"
)

var signupMessages = map[string]string{
	"required":                "All required fields must be filled in",
	"email":                   "Invalid email address",
	"ConfirmPassword.eqfield": "Passwords do not match",
}

var loginMessages = map[string]string{
	"required": "Email and password are required",
}

// sessionCustomer is the customer object of signup and login responses,
// which carries the token alongside the profile.
type sessionCustomer struct {
	users.Customer
	Token string `json:"token"`
}

func (h *Handler) Signup(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var nc users.NewCustomer
	if !bindJSON(c, &nc) {
		return
	}
	if !h.checkStruct(c, nc, signupMessages) {
		return
	}

	res, err := h.u.Signup(c.Request.Context(), nc)
	if err != nil {
		writeError(c, "signup failed", err)
		return
	}

	slog.Info("customer registered", slog.String(logkey.TraceID, traceId), slog.Int64(logkey.CustomerID, res.Customer.ID))
	c.JSON(http.StatusCreated, gin.H{
		"message":        "Customer registered successfully",
		"cliente":        sessionCustomer{Customer: res.Customer, Token: res.Token},
		"desconto":       res.WelcomeDiscount,
		"codigoDesconto": res.DiscountCode,
	})
}

func (h *Handler) Login(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var creds users.Credentials
	if !bindJSON(c, &creds) {
		return
	}
	if !h.checkStruct(c, creds, loginMessages) {
		return
	}

	session, err := h.u.Login(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(c, "login failed", err)
		return
	}

	slog.Info("customer logged in", slog.String(logkey.TraceID, traceId), slog.Int64(logkey.CustomerID, session.Customer.ID))
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"cliente": sessionCustomer{Customer: session.Customer, Token: session.Token},
	})
}

// VerifyToken echoes the claims of a token Authentication already accepted.
func (h *Handler) VerifyToken(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access token required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Valid token", "user": claims})
}

func (h *Handler) GetCustomer(c *gin.Context) {
	cust, err := h.u.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeError(c, "fetching customer failed", err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	var upd users.ProfileUpdate
	if !bindJSON(c, &upd) {
		return
	}

	cust, err := h.u.UpdateProfile(c.Request.Context(), c.Param("email"), upd)
	if err != nil {
		writeError(c, "profile update failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "cliente": cust})
}
