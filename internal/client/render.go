package client

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	brandColor   = lipgloss.Color("#C9A227")
	mutedColor   = lipgloss.Color("245")
	successColor = lipgloss.Color("42")
	errorColor   = lipgloss.Color("196")

	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(brandColor)
	mutedStyle      = lipgloss.NewStyle().Foreground(mutedColor)
	nameStyle       = lipgloss.NewStyle().Bold(true)
	priceStyle      = lipgloss.NewStyle().Foreground(brandColor)
	errorFieldStyle = lipgloss.NewStyle().Foreground(errorColor)
)

var modalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(brandColor).
	Padding(0, 1)

// Render draws s as terminal text.
func Render(s ViewState) string {
	var b strings.Builder

	b.WriteString(renderHeader(s))
	b.WriteString("\n\n")

	if len(s.Notifications) > 0 {
		for _, n := range s.Notifications {
			b.WriteString(renderNotification(n))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if s.Bonus != nil {
		b.WriteString(modalStyle.Render(fmt.Sprintf(
			"Congratulations! You earned %d%% off your first purchase.\nCode: %s",
			s.Bonus.Discount, s.Bonus.Code)))
		b.WriteString("\n\n")
	}

	if s.Modal != ModalNone {
		b.WriteString(renderModal(s))
		b.WriteString("\n\n")
	}

	b.WriteString(RenderProducts(s))
	return b.String()
}

func renderHeader(s ViewState) string {
	title := headerStyle.Render("ChicStar")
	if s.Session == LoggedIn && s.User != nil {
		return title + "  " + mutedStyle.Render("signed in as "+s.User.Name)
	}
	return title + "  " + mutedStyle.Render("not signed in")
}

func renderNotification(n Notification) string {
	style := lipgloss.NewStyle().Foreground(successColor)
	mark := "✓"
	if n.Kind == NoticeError {
		style = lipgloss.NewStyle().Foreground(errorColor)
		mark = "✗"
	}
	return style.Render(mark + " " + n.Message)
}

func renderModal(s ViewState) string {
	var lines []string
	switch s.Modal {
	case ModalLogin:
		lines = append(lines, nameStyle.Render("Login"))
	case ModalSignup:
		lines = append(lines, nameStyle.Render("Create account"))
	case ModalProfile:
		lines = append(lines, nameStyle.Render("My profile"))
		if p := s.Profile; p != nil {
			lines = append(lines,
				"Name:       "+p.Name,
				"Email:      "+p.Email,
				"Phone:      "+p.Phone,
				fmt.Sprintf("Newsletter: %t", p.AcceptsNewsletter),
				fmt.Sprintf("Orders:     %d", len(p.OrderIDs)),
				fmt.Sprintf("Favorites:  %d", len(p.FavoriteIDs)),
				"Member since "+p.CreatedAt.Format("02/01/2006"),
			)
		}
	}

	fields := make([]string, 0, len(s.FieldErrors))
	for field := range s.FieldErrors {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	for _, field := range fields {
		lines = append(lines, errorFieldStyle.Render(field+": "+s.FieldErrors[field]))
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

// RenderProducts lists the catalog, marking favorites.
func RenderProducts(s ViewState) string {
	if len(s.Products) == 0 {
		return mutedStyle.Render("No products found.")
	}
	rows := make([]string, 0, len(s.Products))
	for _, p := range s.Products {
		heart := " "
		if slices.Contains(s.Favorites, p.ID) {
			heart = "♥"
		}
		row := fmt.Sprintf("%s %s %s  %s  %s",
			heart,
			mutedStyle.Render(fmt.Sprintf("#%d", p.ID)),
			nameStyle.Render(p.Name),
			priceStyle.Render(FormatPrice(p.Price)),
			mutedStyle.Render(fmt.Sprintf("%d in stock", p.Stock)),
		)
		rows = append(rows, row)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// RenderOrders lists placed orders with their totals.
func RenderOrders(s ViewState) string {
	if len(s.Orders) == 0 {
		return mutedStyle.Render("No orders yet.")
	}
	rows := make([]string, 0, len(s.Orders))
	for _, o := range s.Orders {
		items := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
		}
		rows = append(rows, fmt.Sprintf("%s %s  %s  %s",
			mutedStyle.Render(fmt.Sprintf("#%d", o.ID)),
			o.CreatedAt.Format("02/01/2006 15:04"),
			priceStyle.Render(FormatPrice(o.Total)),
			strings.Join(items, ", ")+" ("+o.Status+")",
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// FormatPrice renders d in Brazilian reais, e.g. R$ 2.500,00.
func FormatPrice(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}
	return "R$ " + sign + grouped.String() + "," + frac
}
