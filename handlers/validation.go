package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"toyWholesale/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() func(any) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report JSON (or form) names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	return func(s any) error {
		err := v.Struct(s)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return models.ErrBadRequest
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fe.Field()+": "+validationMessage(fe))
		}
		return fmt.Errorf("%w: %s", models.ErrBadRequest, strings.Join(msgs, "; "))
	}
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "must be at least " + e.Param() + " characters"
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "numeric":
		return "must be numeric"
	default:
		return "invalid value"
	}
}

type registerForm struct {
	Email        string `form:"email" validate:"required,email,max=254"`
	Password     string `form:"password" validate:"required,min=6,max=72"`
	CompanyName  string `form:"companyName" validate:"required,max=200"`
	UNP          string `form:"unp" validate:"omitempty,numeric,max=20"`
	DirectorName string `form:"directorName" validate:"max=200"`
	Phone        string `form:"phone" validate:"max=50"`
	Address      string `form:"address" validate:"max=500"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type productForm struct {
	Name        string `form:"name" validate:"required,max=200"`
	Description string `form:"description" validate:"max=5000"`
	Category    string `form:"category" validate:"max=100"`
	AgeGroup    string `form:"ageGroup" validate:"max=100"`
	Material    string `form:"material" validate:"max=100"`
	Country     string `form:"country" validate:"max=100"`
	Price5      string `form:"price5" validate:"required"`
	Price20     string `form:"price20" validate:"required"`
	Price50     string `form:"price50" validate:"required"`
	InStock     string `form:"inStock"`
	ImageURL    string `form:"imageUrl" validate:"max=500"`
}

// quantity upper bounds mirror pricing.MaxQuantity
type cartItemRequest struct {
	ProductId int `json:"productId" validate:"gt=0"`
	Quantity  int `json:"quantity" validate:"max=100000"`
}

type quantityRequest struct {
	Quantity int `json:"quantity" validate:"max=100000"`
}

type orderItemRequest struct {
	ProductId int `json:"productId" validate:"gt=0"`
	Quantity  int `json:"quantity" validate:"max=100000"`
}

type orderRequest struct {
	Items           []orderItemRequest `json:"items" validate:"dive"`
	DeliveryAddress string             `json:"deliveryAddress" validate:"required,max=500"`
	Total           *decimal.Decimal   `json:"total"`
}

type cartCheckoutRequest struct {
	DeliveryAddress string           `json:"deliveryAddress" validate:"required,max=500"`
	Total           *decimal.Decimal `json:"total"`
}

type statusRequest struct {
	Status       string `json:"status" validate:"required"`
	DeliveryDate string `json:"deliveryDate"`
}

type messageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}
