package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"toyWholesale/cart"
	"toyWholesale/entities"
	"toyWholesale/models"
	"toyWholesale/pricing"
	"toyWholesale/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CheckoutItem struct {
	ProductId int
	Quantity  int
}

// Checkout is an order request. Total, when set, is the amount the client
// displayed; it must match the server-side price.
type Checkout struct {
	Items           []CheckoutItem
	DeliveryAddress string
	Total           *decimal.Decimal
}

type OrderService struct {
	ur     repository.UserRepository
	pr     repository.ProductRepository
	cr     repository.CartRepository
	or     repository.OrderRepository
	chr    repository.ChatRepository
	policy models.StatusPolicy
	log    *zap.Logger
}

func NewOrderService(userRepo repository.UserRepository, productRepo repository.ProductRepository, cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository, chatRepo repository.ChatRepository, policy models.StatusPolicy, log *zap.Logger) OrderService {
	return OrderService{
		ur:     userRepo,
		pr:     productRepo,
		cr:     cartRepo,
		or:     orderRepo,
		chr:    chatRepo,
		policy: policy,
		log:    log.Named("orders"),
	}
}

// priceCheckout rebuilds the cart from the catalog so that every line is
// priced with the current tiers.
func (ors *OrderService) priceCheckout(ctx context.Context, items []CheckoutItem) (c cart.Cart, err error) {
	if len(items) == 0 {
		err = models.ErrEmptyCart
		return
	}
	ids := make([]int, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductId)
	}
	prods, err := ors.pr.GetProductsByIds(ctx, ids)
	if err != nil {
		return
	}

	for _, it := range items {
		if it.Quantity > pricing.MaxQuantity {
			err = models.ErrQuantityTooLarge
			return
		}
		p, ok := prods[it.ProductId]
		if !ok {
			err = fmt.Errorf("%w: product %d does not exist", models.ErrBadRequest, it.ProductId)
			return
		}
		if !p.InStock {
			err = fmt.Errorf("%w: %s", models.ErrProductUnavailable, p.Name)
			return
		}
		c.Add(cart.Item{
			ProductID: p.Id,
			Name:      p.Name,
			Tiers:     p.Tiers,
			Quantity:  it.Quantity,
			ImageURL:  p.ImageURL.String,
		})
	}
	for _, line := range c.Items {
		if e := models.QuantityError(line.Quantity); e != nil {
			err = fmt.Errorf("%w (%s)", e, line.Name)
			return
		}
	}
	return
}

// PlaceOrder prices the requested items, stores the order and opens its chat.
func (ors *OrderService) PlaceOrder(ctx context.Context, userId int, req Checkout) (order entities.Order, err error) {
	address := strings.TrimSpace(req.DeliveryAddress)
	if address == "" {
		err = fmt.Errorf("%w: delivery address is required", models.ErrBadRequest)
		return
	}
	c, err := ors.priceCheckout(ctx, req.Items)
	if err != nil {
		return
	}

	total := c.Total()
	if req.Total != nil && !req.Total.Round(2).Equal(total.Round(2)) {
		ors.log.Info("PlaceOrder: client total differs",
			zap.Int("userId", userId),
			zap.String("client", req.Total.String()),
			zap.String("server", total.String()))
		err = models.ErrTotalMismatch
		return
	}

	items := make([]models.OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, models.OrderItem{
			ProductId: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
			Pricing:   models.TieredPricing(it.Tiers),
		})
	}

	oModel := models.Order_db{
		UserId:          userId,
		Items:           items,
		Total:           total,
		DeliveryAddress: address,
		Status:          models.StatusProcessing,
		CreatedAt:       time.Now().UTC(),
	}
	var chatId int
	oModel.Id, chatId, err = ors.or.CreateOrderWithChat(ctx, oModel)
	if err != nil {
		return
	}
	order = entities.NewOrder(oModel)
	order.ChatId = chatId
	ors.log.Info("order placed", zap.Int("orderId", oModel.Id), zap.Int("userId", userId), zap.String("total", total.StringFixed(2)))
	return
}

// PlaceCartOrder checks out the stored cart and empties it.
func (ors *OrderService) PlaceCartOrder(ctx context.Context, userId int, cartSessionId, address string, total *decimal.Decimal) (order entities.Order, err error) {
	c, err := ors.cr.GetCart(ctx, cartSessionId)
	if err != nil {
		return
	}
	req := Checkout{DeliveryAddress: address, Total: total}
	for _, it := range c.Items {
		req.Items = append(req.Items, CheckoutItem{ProductId: it.ProductID, Quantity: it.Quantity})
	}
	order, err = ors.PlaceOrder(ctx, userId, req)
	if err != nil {
		return
	}
	if e := ors.cr.DeleteCart(ctx, cartSessionId); e != nil {
		ors.log.Warn("PlaceCartOrder: cart not cleared", zap.Int("orderId", order.Id), zap.Error(e))
	}
	return
}

func (ors *OrderService) withChatIds(ctx context.Context, orders []models.Order_db, userId *int) (res []entities.Order, err error) {
	chats, err := ors.chr.GetChats(ctx, userId)
	if err != nil {
		return
	}
	byOrder := make(map[int]int, len(chats))
	for _, ch := range chats {
		byOrder[ch.OrderId] = ch.Id
	}
	res = make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		e := entities.NewOrder(o)
		e.ChatId = byOrder[o.Id]
		res = append(res, e)
	}
	return
}

func (ors *OrderService) ListUserOrders(ctx context.Context, userId int) (orders []entities.Order, err error) {
	found, err := ors.or.SearchOrders(ctx, models.OrderSearchData{UserId: &userId})
	if err != nil {
		return
	}
	return ors.withChatIds(ctx, found, &userId)
}

// ListUserOrdersAdmin lists another user's orders; the user must exist.
func (ors *OrderService) ListUserOrdersAdmin(ctx context.Context, userId int) (orders []entities.Order, err error) {
	_, ex, err := ors.ur.GetUserById(ctx, userId)
	if err != nil {
		return
	}
	if !ex {
		err = models.ErrNotFoundError
		return
	}
	return ors.ListUserOrders(ctx, userId)
}

func (ors *OrderService) ListOrders(ctx context.Context, status *models.OrderStatus) (orders []entities.Order, err error) {
	found, err := ors.or.SearchOrders(ctx, models.OrderSearchData{Status: status})
	if err != nil {
		return
	}
	return ors.withChatIds(ctx, found, nil)
}

// GetOrder returns an order visible to caller. Orders of other users are
// reported as missing.
func (ors *OrderService) GetOrder(ctx context.Context, caller models.SessionUser, orderId int) (order entities.Order, err error) {
	oModel, err := ors.or.GetOrderById(ctx, orderId)
	if err != nil {
		return
	}
	if !caller.IsAdmin && oModel.UserId != caller.UserId {
		err = models.ErrNotFoundError
		return
	}
	order = entities.NewOrder(oModel)
	chat, ex, err := ors.chr.GetChatByOrderId(ctx, orderId)
	if err != nil {
		return
	}
	if ex {
		order.ChatId = chat.Id
	}
	return
}

// UpdateStatus moves an order to a new status under the configured policy,
// optionally setting the delivery date. Items and total stay untouched.
func (ors *OrderService) UpdateStatus(ctx context.Context, orderId int, upd models.StatusUpdate) (order entities.Order, err error) {
	if !upd.Status.IsValid() {
		err = models.ErrInvalidStatus
		return
	}
	if err = models.ValidateDeliveryDate(upd.DeliveryDate); err != nil {
		return
	}
	current, err := ors.or.GetOrderById(ctx, orderId)
	if err != nil {
		return
	}
	if err = ors.policy.CheckTransition(current.Status, upd.Status); err != nil {
		ors.log.Info("UpdateStatus: rejected",
			zap.Int("orderId", orderId),
			zap.String("from", string(current.Status)),
			zap.String("to", string(upd.Status)))
		return
	}
	if err = ors.or.SetOrderStatus(ctx, orderId, upd.Status, upd.DeliveryDate); err != nil {
		return
	}

	current.Status = upd.Status
	if upd.DeliveryDate != "" {
		current.DeliveryDate = sql.NullString{String: upd.DeliveryDate, Valid: true}
	}
	order = entities.NewOrder(current)
	chat, ex, err := ors.chr.GetChatByOrderId(ctx, orderId)
	if err != nil {
		return
	}
	if ex {
		order.ChatId = chat.Id
	}
	return
}
