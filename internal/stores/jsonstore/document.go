package jsonstore

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The browser client formats prices as numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Document is the whole persisted state. It is read and rewritten as a unit.
type Document struct {
	Customers     []Customer    `json:"customers"`
	Products      []Product     `json:"products"`
	Orders        []Order       `json:"orders"`
	Configuration Configuration `json:"configuration"`
}

// Customer is the stored form of a customer, including the password hash.
type Customer struct {
	ID                int64     `json:"id"`
	Name              string    `json:"nome"`
	Email             string    `json:"email"`
	Phone             string    `json:"telefone"`
	PasswordHash      string    `json:"senha"`
	AcceptsNewsletter bool      `json:"aceitaNewsletter"`
	CreatedAt         time.Time `json:"dataCadastro"`
	LastAccessAt      time.Time `json:"ultimoAcesso"`
	Status            string    `json:"status"`
	OrderIDs          []int64   `json:"pedidos"`
	FavoriteIDs       []int64   `json:"favoritos"`
}

// Product is a catalog entry. Stock is decremented by order placement.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nome"`
	Description string          `json:"descricao"`
	Price       decimal.Decimal `json:"preco"`
	Image       string          `json:"imagem"`
	Category    string          `json:"categoria"`
	Stock       int             `json:"estoque"`
}

// LineItem is one product of an order with the price captured at creation.
type LineItem struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"nome"`
	UnitPrice decimal.Decimal `json:"preco"`
	Quantity  int             `json:"quantidade"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Order is immutable once created.
type Order struct {
	ID            int64           `json:"id"`
	CustomerEmail string          `json:"clienteEmail"`
	Items         []LineItem      `json:"produtos"`
	Total         decimal.Decimal `json:"total"`
	Address       json.RawMessage `json:"endereco"`
	Notes         string          `json:"observacoes"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"dataPedido"`
	UpdatedAt     time.Time       `json:"dataAtualizacao"`
}

// Configuration is static at runtime.
type Configuration struct {
	WelcomeDiscount int    `json:"descontoBoasVindas"`
	DiscountCode    string `json:"codigoDesconto"`
}

const (
	CustomerStatusActive = "active"
	OrderStatusPending   = "pending"
)

// CustomerByEmail returns a pointer into d.Customers, or nil.
func (d *Document) CustomerByEmail(email string) *Customer {
	for i := range d.Customers {
		if d.Customers[i].Email == email {
			return &d.Customers[i]
		}
	}
	return nil
}

// ProductByID returns a pointer into d.Products, or nil.
func (d *Document) ProductByID(id int64) *Product {
	for i := range d.Products {
		if d.Products[i].ID == id {
			return &d.Products[i]
		}
	}
	return nil
}

// normalize replaces nil slices so the file and responses always carry arrays.
func (d *Document) normalize() {
	if d.Customers == nil {
		d.Customers = []Customer{}
	}
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Orders == nil {
		d.Orders = []Order{}
	}
	for i := range d.Customers {
		if d.Customers[i].OrderIDs == nil {
			d.Customers[i].OrderIDs = []int64{}
		}
		if d.Customers[i].FavoriteIDs == nil {
			d.Customers[i].FavoriteIDs = []int64{}
		}
	}
	for i := range d.Orders {
		if len(d.Orders[i].Address) == 0 {
			d.Orders[i].Address = json.RawMessage("{}")
		}
	}
}

// DefaultDocument is written on first startup.
func DefaultDocument() *Document {
	return &Document{
		Customers: []Customer{},
		Products: []Product{
			{
				ID:          1,
				Name:        "Conjunto Flor de Versalhes",
				Description: "Um conjunto dourado inspirado nos jardins reais de Versalhes. Três camadas de colares e brincos em formato de coração que irradiam sofisticação e encanto.",
				Price:       decimal.NewFromInt(2500),
				Image:       "img/Produto_1.png",
				Category:    "aneis",
				Stock:       5,
			},
			{
				ID:          2,
				Name:        "Conjunto Amour Élégant",
				Description: "Design minimalista e marcante. Corrente longa com corações delicadamente entrelaçados, símbolo de amor atemporal e elegância pura.",
				Price:       decimal.NewFromInt(1800),
				Image:       "img/Produto_2.png",
				Category:    "pulseiras",
				Stock:       3,
			},
			{
				ID:          3,
				Name:        "Conjunto Império do Amor",
				Description: "Um toque de realeza em cada detalhe. Correntes douradas com corações e pedras brilhantes que refletem luxo e romantismo.",
				Price:       decimal.NewFromInt(3200),
				Image:       "img/Produto_3.png",
				Category:    "colares",
				Stock:       2,
			},
		},
		Orders: []Order{},
		Configuration: Configuration{
			WelcomeDiscount: 10,
			DiscountCode:    "WELCOME10",
		},
	}
}
