package entities

import (
	"time"

	"toyWholesale/models"
	"toyWholesale/pricing"
)

type User struct {
	Id           int       `json:"id"`
	Email        string    `json:"email"`
	CompanyName  string    `json:"companyName"`
	UNP          string    `json:"unp"`
	DirectorName string    `json:"directorName"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	LogoURL      string    `json:"logoUrl,omitempty"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewUser(u models.User_db) User {
	return User{
		Id:           u.Id,
		Email:        u.Email,
		CompanyName:  u.CompanyName,
		UNP:          u.UNP,
		DirectorName: u.DirectorName,
		Phone:        u.Phone,
		Address:      u.Address,
		LogoURL:      u.LogoURL.String,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
	}
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Product struct {
	Id          int           `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	AgeGroup    string        `json:"ageGroup"`
	Material    string        `json:"material"`
	Country     string        `json:"country"`
	Price       pricing.Tiers `json:"price"`
	InStock     bool          `json:"inStock"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

func NewProduct(p models.Product_db) Product {
	return Product{
		Id:          p.Id,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		AgeGroup:    p.AgeGroup,
		Material:    p.Material,
		Country:     p.Country,
		Price:       p.Tiers,
		InStock:     p.InStock,
		ImageURL:    p.ImageURL.String,
		CreatedAt:   p.CreatedAt,
	}
}

// Facets lists the distinct values available for catalog filtering.
type Facets struct {
	Categories  []string `json:"categories"`
	AgeGroups   []string `json:"ageGroups"`
	Materials   []string `json:"materials"`
	Countries   []string `json:"countries"`
	PriceRanges []string `json:"priceRanges"`
}

type CartItem struct {
	ProductId int           `json:"productId"`
	Name      string        `json:"name"`
	Price     pricing.Tiers `json:"price"`
	Quantity  int           `json:"quantity"`
	ImageURL  string        `json:"imageUrl,omitempty"`
	UnitPrice string        `json:"unitPrice"`
	LineTotal string        `json:"lineTotal"`
}

type CartResponse struct {
	Items      []CartItem `json:"items"`
	ItemCount  int        `json:"itemCount"`
	TotalPrice string     `json:"total"`
}

type Order struct {
	Id              int                `json:"id"`
	UserId          int                `json:"userId"`
	Items           []models.OrderItem `json:"items"`
	Total           string             `json:"total"`
	DeliveryAddress string             `json:"deliveryAddress"`
	Status          models.OrderStatus `json:"status"`
	StatusLabel     string             `json:"statusLabel"`
	DeliveryDate    string             `json:"deliveryDate,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	ChatId          int                `json:"chatId,omitempty"`
}

func NewOrder(o models.Order_db) Order {
	items := o.Items
	if items == nil {
		items = []models.OrderItem{}
	}
	return Order{
		Id:              o.Id,
		UserId:          o.UserId,
		Items:           items,
		Total:           o.Total.StringFixed(2),
		DeliveryAddress: o.DeliveryAddress,
		Status:          o.Status,
		StatusLabel:     o.Status.Label(),
		DeliveryDate:    o.DeliveryDate.String,
		CreatedAt:       o.CreatedAt,
	}
}

type Chat struct {
	Id        int       `json:"id"`
	OrderId   int       `json:"orderId"`
	UserId    int       `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewChat(c models.Chat_db) Chat {
	return Chat{Id: c.Id, OrderId: c.OrderId, UserId: c.UserId, CreatedAt: c.CreatedAt}
}

type Message struct {
	Id        int       `json:"id"`
	ChatId    int       `json:"chatId"`
	SenderId  int       `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewMessage(m models.Message_db) Message {
	return Message{Id: m.Id, ChatId: m.ChatId, SenderId: m.SenderId, Content: m.Content, CreatedAt: m.CreatedAt}
}

type Stats struct {
	TotalUsers     int            `json:"totalUsers"`
	TotalOrders    int            `json:"totalOrders"`
	TotalRevenue   string         `json:"totalRevenue"`
	OpenOrders     int            `json:"openOrders"`
	OrdersByStatus map[string]int `json:"ordersByStatus"`
}
