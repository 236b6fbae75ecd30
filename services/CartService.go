package services

import (
	"context"

	"toyWholesale/cart"
	"toyWholesale/entities"
	"toyWholesale/models"
	"toyWholesale/pricing"
	"toyWholesale/repository"

	"go.uber.org/zap"
)

type CartService struct {
	pr  repository.ProductRepository
	cr  repository.CartRepository
	log *zap.Logger
}

func NewCartService(productRepo repository.ProductRepository, cartRepo repository.CartRepository, log *zap.Logger) CartService {
	return CartService{
		pr:  productRepo,
		cr:  cartRepo,
		log: log.Named("cart"),
	}
}

func NewCartResponse(c cart.Cart) entities.CartResponse {
	items := make([]entities.CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, entities.CartItem{
			ProductId: it.ProductID,
			Name:      it.Name,
			Price:     it.Tiers,
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
			UnitPrice: pricing.UnitPrice(it.Quantity, it.Tiers).StringFixed(2),
			LineTotal: pricing.LineTotal(it.Quantity, it.Tiers).StringFixed(2),
		})
	}
	return entities.CartResponse{
		Items:      items,
		ItemCount:  c.ItemCount(),
		TotalPrice: c.Total().StringFixed(2),
	}
}

func (cs *CartService) GetCart(ctx context.Context, cartSessionId string) (resp entities.CartResponse, err error) {
	c, err := cs.cr.GetCart(ctx, cartSessionId)
	if err != nil {
		return
	}
	resp = NewCartResponse(c)
	return
}

// orderable returns the product if it exists and is in stock.
func (cs *CartService) orderable(ctx context.Context, productId int) (p models.Product_db, err error) {
	var ex bool
	p, ex, err = cs.pr.GetProductById(ctx, productId)
	if err != nil {
		return
	}
	if !ex {
		err = models.ErrNotFoundError
		return
	}
	if !p.InStock {
		cs.log.Info("product is out of stock", zap.Int("productId", productId))
		err = models.ErrProductUnavailable
	}
	return
}

// AddCartItem merges quantity units of a product into the cart, copying the
// product's current tiers.
func (cs *CartService) AddCartItem(ctx context.Context, cartSessionId string, productId, quantity int) (resp entities.CartResponse, err error) {
	if err = models.QuantityError(quantity); err != nil {
		return
	}
	p, err := cs.orderable(ctx, productId)
	if err != nil {
		return
	}
	c, err := cs.cr.GetCart(ctx, cartSessionId)
	if err != nil {
		return
	}
	c.Add(cart.Item{
		ProductID: p.Id,
		Name:      p.Name,
		Tiers:     p.Tiers,
		Quantity:  quantity,
		ImageURL:  p.ImageURL.String,
	})
	if merged, _ := c.Get(productId); models.QuantityError(merged.Quantity) != nil {
		err = models.ErrQuantityTooLarge
		return
	}
	return cs.save(ctx, cartSessionId, c)
}

// SetCartItemQuantity overwrites a line's quantity; zero or less removes it.
func (cs *CartService) SetCartItemQuantity(ctx context.Context, cartSessionId string, productId, quantity int) (resp entities.CartResponse, err error) {
	if quantity > 0 {
		if err = models.QuantityError(quantity); err != nil {
			return
		}
	}
	c, err := cs.cr.GetCart(ctx, cartSessionId)
	if err != nil {
		return
	}
	if _, ok := c.Get(productId); !ok {
		err = models.ErrNotFoundError
		return
	}
	c.SetQuantity(productId, quantity)
	return cs.save(ctx, cartSessionId, c)
}

func (cs *CartService) RemoveCartItem(ctx context.Context, cartSessionId string, productId int) (resp entities.CartResponse, err error) {
	c, err := cs.cr.GetCart(ctx, cartSessionId)
	if err != nil {
		return
	}
	c.Remove(productId)
	return cs.save(ctx, cartSessionId, c)
}

func (cs *CartService) ClearCart(ctx context.Context, cartSessionId string) error {
	return cs.cr.DeleteCart(ctx, cartSessionId)
}

func (cs *CartService) save(ctx context.Context, cartSessionId string, c cart.Cart) (resp entities.CartResponse, err error) {
	if c.IsEmpty() {
		err = cs.cr.DeleteCart(ctx, cartSessionId)
	} else {
		err = cs.cr.SetCart(ctx, cartSessionId, c)
	}
	if err != nil {
		return
	}
	resp = NewCartResponse(c)
	return
}
