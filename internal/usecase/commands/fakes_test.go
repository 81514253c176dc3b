//go:build unit

package commands_test

import (
	"context"
	"time"

	"github.com/ed-robles/shop-template/internal/domain/order"
	"github.com/ed-robles/shop-template/internal/domain/product"
	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/pkg/errs"
	"github.com/ed-robles/shop-template/internal/usecase/commands"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/ed-robles/shop-template/internal/infra/db"
	"github.com/google/uuid"
)

// memStore is a transactionless in-memory stand-in for the postgres
// layer. It reproduces the repository error kinds the usecases branch
// on so the same code paths run in tests.
type memStore struct {
	users         map[uuid.UUID]shared.UserSnapshot
	carts         map[uuid.UUID]uuid.UUID
	cartItems     map[uuid.UUID]*memCartItem
	itemOrder     []uuid.UUID
	products      map[uuid.UUID]*shared.ProductSnapshot
	orders        map[uuid.UUID]*shared.OrderSnapshot
	orderItems    map[uuid.UUID][]shared.OrderItemSnapshot
	events        map[string]*shared.WebhookEventRecord
	jobs          []memJob
	now           time.Time
	failDecrement bool
}

type memCartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

type memJob struct {
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[uuid.UUID]shared.UserSnapshot),
		carts:      make(map[uuid.UUID]uuid.UUID),
		cartItems:  make(map[uuid.UUID]*memCartItem),
		products:   make(map[uuid.UUID]*shared.ProductSnapshot),
		orders:     make(map[uuid.UUID]*shared.OrderSnapshot),
		orderItems: make(map[uuid.UUID][]shared.OrderItemSnapshot),
		events:     make(map[string]*shared.WebhookEventRecord),
		now:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func notFoundErr(msg string) error {
	return infra.WrapRepoErr(msg, errs.New(msg), infra.KindNotFound)
}

func duplicateErr(msg string) error {
	return infra.WrapRepoErr(msg, errs.New(msg), infra.KindDuplicateKey)
}

// fakeUoW runs every closure directly; there is nothing transactional
// to roll back in memory.
type fakeUoW struct {
	store *memStore
}

func newFakeUoW(store *memStore) *fakeUoW {
	return &fakeUoW{store: store}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, &fakeTx{store: u.store})
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

type fakeTx struct {
	store *memStore
}

func (t *fakeTx) DB() db.DBTX { return nil }

func (t *fakeTx) Carts() shared.CartRepository { return &fakeCarts{t.store} }

func (t *fakeTx) Products() shared.ProductRepository { return &fakeProducts{t.store} }

func (t *fakeTx) Orders() shared.OrderRepository { return &fakeOrders{t.store} }

func (t *fakeTx) WebhookEvents() shared.WebhookEventRepository { return &fakeEvents{t.store} }

func (t *fakeTx) Notifications() shared.NotificationRepository { return &fakeJobs{t.store} }

func (t *fakeTx) Users() shared.UserRepository { return &fakeUsers{t.store} }

type fakeUsers struct{ s *memStore }

func (r *fakeUsers) Upsert(_ context.Context, _ db.DBTX, id uuid.UUID, email string) error {
	r.s.users[id] = shared.UserSnapshot{ID: id, Email: email, CreatedAt: r.s.now}
	return nil
}

func (r *fakeUsers) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*shared.UserSnapshot, error) {
	user, ok := r.s.users[id]
	if !ok {
		return nil, notFoundErr("user not found")
	}
	return &user, nil
}

func (r *fakeUsers) FindByEmail(_ context.Context, _ db.DBTX, email string) (*shared.UserSnapshot, error) {
	for _, user := range r.s.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, notFoundErr("user not found")
}

type fakeCarts struct{ s *memStore }

func (r *fakeCarts) FindOrCreateByUser(_ context.Context, _ db.DBTX, userID uuid.UUID) (uuid.UUID, error) {
	if id, ok := r.s.carts[userID]; ok {
		return id, nil
	}
	id := uuid.New()
	r.s.carts[userID] = id
	return id, nil
}

func (r *fakeCarts) FindByUser(_ context.Context, _ db.DBTX, userID uuid.UUID) (uuid.UUID, error) {
	if id, ok := r.s.carts[userID]; ok {
		return id, nil
	}
	return uuid.Nil, notFoundErr("cart not found")
}

func (r *fakeCarts) ItemsWithProducts(_ context.Context, _ db.DBTX, cartID uuid.UUID) ([]shared.CartItemWithProduct, error) {
	rows := make([]shared.CartItemWithProduct, 0)
	for _, itemID := range r.s.itemOrder {
		item, ok := r.s.cartItems[itemID]
		if !ok || item.CartID != cartID {
			continue
		}
		row := shared.CartItemWithProduct{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if prod, ok := r.s.products[item.ProductID]; ok {
			row.ProductFound = true
			row.Name = prod.Name
			row.Slug = prod.Slug
			row.ImageURL = prod.ImageURL
			row.PriceInCents = prod.PriceInCents
			row.StockQuantity = prod.StockQuantity
			row.Published = prod.Status == product.StatusPublished
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *fakeCarts) FindItem(_ context.Context, _ db.DBTX, cartID, itemID uuid.UUID) (*shared.CartItemRecord, error) {
	item, ok := r.s.cartItems[itemID]
	if !ok || item.CartID != cartID {
		return nil, notFoundErr("cart item not found")
	}
	return &shared.CartItemRecord{ID: item.ID, CartID: item.CartID, ProductID: item.ProductID, Quantity: item.Quantity}, nil
}

func (r *fakeCarts) UpsertItem(_ context.Context, _ db.DBTX, cartID, productID uuid.UUID, quantity int32) error {
	for _, item := range r.s.cartItems {
		if item.CartID == cartID && item.ProductID == productID {
			item.Quantity = quantity
			return nil
		}
	}
	id := uuid.New()
	r.s.cartItems[id] = &memCartItem{ID: id, CartID: cartID, ProductID: productID, Quantity: quantity}
	r.s.itemOrder = append(r.s.itemOrder, id)
	return nil
}

func (r *fakeCarts) UpdateItemQuantity(_ context.Context, _ db.DBTX, itemID uuid.UUID, quantity int32) error {
	item, ok := r.s.cartItems[itemID]
	if !ok {
		return notFoundErr("cart item not found")
	}
	item.Quantity = quantity
	return nil
}

func (r *fakeCarts) DeleteItem(_ context.Context, _ db.DBTX, itemID uuid.UUID) error {
	delete(r.s.cartItems, itemID)
	return nil
}

func (r *fakeCarts) DeleteItems(_ context.Context, _ db.DBTX, itemIDs []uuid.UUID) error {
	for _, id := range itemIDs {
		delete(r.s.cartItems, id)
	}
	return nil
}

func (r *fakeCarts) Clear(_ context.Context, _ db.DBTX, cartID uuid.UUID) error {
	for id, item := range r.s.cartItems {
		if item.CartID == cartID {
			delete(r.s.cartItems, id)
		}
	}
	return nil
}

type fakeProducts struct{ s *memStore }

func (r *fakeProducts) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*shared.ProductSnapshot, error) {
	prod, ok := r.s.products[id]
	if !ok {
		return nil, notFoundErr("product not found")
	}
	found := *prod
	return &found, nil
}

func (r *fakeProducts) FindPublishedByIDs(_ context.Context, _ db.DBTX, ids []uuid.UUID) ([]shared.ProductSnapshot, error) {
	out := make([]shared.ProductSnapshot, 0, len(ids))
	for _, id := range ids {
		if prod, ok := r.s.products[id]; ok && prod.Status == product.StatusPublished {
			out = append(out, *prod)
		}
	}
	return out, nil
}

func (r *fakeProducts) DecrementStock(_ context.Context, _ db.DBTX, id uuid.UUID, quantity int32) (int64, error) {
	if r.s.failDecrement {
		return 0, nil
	}
	prod, ok := r.s.products[id]
	if !ok || prod.StockQuantity < quantity {
		return 0, nil
	}
	prod.StockQuantity -= quantity
	return 1, nil
}

func (r *fakeProducts) Create(_ context.Context, _ db.DBTX, p shared.NewProduct) (uuid.UUID, error) {
	id := uuid.New()
	r.s.products[id] = &shared.ProductSnapshot{
		ID:            id,
		Slug:          p.Slug,
		Name:          p.Name,
		Description:   p.Description,
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		PriceInCents:  p.PriceInCents,
		StockQuantity: p.StockQuantity,
		Status:        p.Status,
		CreatedAt:     r.s.now,
		UpdatedAt:     r.s.now,
	}
	return id, nil
}

func (r *fakeProducts) Update(_ context.Context, _ db.DBTX, id uuid.UUID, p shared.ProductPatch) error {
	prod, ok := r.s.products[id]
	if !ok {
		return notFoundErr("product not found")
	}
	if p.Slug != nil {
		prod.Slug = *p.Slug
	}
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.ImageURL != nil {
		prod.ImageURL = *p.ImageURL
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.PriceInCents != nil {
		prod.PriceInCents = *p.PriceInCents
	}
	if p.StockQuantity != nil {
		prod.StockQuantity = *p.StockQuantity
	}
	if p.Status != nil {
		prod.Status = *p.Status
	}
	return nil
}

func (r *fakeProducts) Delete(_ context.Context, _ db.DBTX, id uuid.UUID) error {
	delete(r.s.products, id)
	return nil
}

func (r *fakeProducts) FindIDBySlug(_ context.Context, _ db.DBTX, slug string) (uuid.UUID, error) {
	for id, prod := range r.s.products {
		if prod.Slug == slug {
			return id, nil
		}
	}
	return uuid.Nil, notFoundErr("product not found")
}

func (r *fakeProducts) AssignSKU(_ context.Context, _ db.DBTX, id uuid.UUID, sku string) (int64, error) {
	for otherID, prod := range r.s.products {
		if otherID != id && prod.SKU == sku {
			return 0, nil
		}
	}
	prod, ok := r.s.products[id]
	if !ok {
		return 0, nil
	}
	prod.SKU = sku
	return 1, nil
}

type fakeOrders struct{ s *memStore }

func (r *fakeOrders) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*shared.OrderSnapshot, error) {
	ord, ok := r.s.orders[id]
	if !ok {
		return nil, notFoundErr("order not found")
	}
	found := *ord
	return &found, nil
}

func (r *fakeOrders) FindBySessionID(_ context.Context, _ db.DBTX, sessionID string) (*shared.OrderSnapshot, error) {
	for _, ord := range r.s.orders {
		if ord.SessionID == sessionID {
			found := *ord
			return &found, nil
		}
	}
	return nil, notFoundErr("order not found")
}

func (r *fakeOrders) Create(_ context.Context, _ db.DBTX, o shared.NewOrder) (uuid.UUID, error) {
	id := uuid.New()
	r.s.orders[id] = &shared.OrderSnapshot{
		ID:              id,
		SessionID:       o.SessionID,
		UserID:          o.UserID,
		CustomerEmail:   o.CustomerEmail,
		PaymentIntentID: o.PaymentIntentID,
		Currency:        o.Currency,
		SubtotalInCents: o.SubtotalInCents,
		TotalInCents:    o.TotalInCents,
		Status:          o.Status,
		CreatedAt:       r.s.now,
		UpdatedAt:       r.s.now,
	}
	return id, nil
}

func (r *fakeOrders) UpdateFromSession(_ context.Context, _ db.DBTX, id uuid.UUID, o shared.OrderUpdate) error {
	ord, ok := r.s.orders[id]
	if !ok {
		return notFoundErr("order not found")
	}
	ord.UserID = o.UserID
	ord.CustomerEmail = o.CustomerEmail
	ord.PaymentIntentID = o.PaymentIntentID
	ord.Currency = o.Currency
	ord.SubtotalInCents = o.SubtotalInCents
	ord.TotalInCents = o.TotalInCents
	if !ord.Status.IsTerminal() {
		ord.Status = o.Status
	}
	return nil
}

func (r *fakeOrders) MarkPaid(_ context.Context, _ db.DBTX, id uuid.UUID, paymentIntentID, customerEmail *string, paidAt time.Time) error {
	ord, ok := r.s.orders[id]
	if !ok {
		return notFoundErr("order not found")
	}
	if ord.Status.IsTerminal() {
		return nil
	}
	ord.Status = order.StatusPaid
	ord.PaidAt = &paidAt
	if paymentIntentID != nil {
		ord.PaymentIntentID = paymentIntentID
	}
	if customerEmail != nil {
		ord.CustomerEmail = customerEmail
	}
	return nil
}

func (r *fakeOrders) MarkPaymentFailed(_ context.Context, _ db.DBTX, id uuid.UUID, paymentIntentID, customerEmail *string) error {
	ord, ok := r.s.orders[id]
	if !ok {
		return notFoundErr("order not found")
	}
	if ord.Status.IsTerminal() {
		return nil
	}
	ord.Status = order.StatusPaymentFailed
	if paymentIntentID != nil {
		ord.PaymentIntentID = paymentIntentID
	}
	if customerEmail != nil {
		ord.CustomerEmail = customerEmail
	}
	return nil
}

func (r *fakeOrders) MarkStockFailed(_ context.Context, _ db.DBTX, id uuid.UUID, paymentIntentID, customerEmail *string) error {
	ord, ok := r.s.orders[id]
	if !ok {
		return notFoundErr("order not found")
	}
	if ord.Status.IsTerminal() {
		return nil
	}
	ord.Status = order.StatusStockFailed
	ord.PaidAt = nil
	if paymentIntentID != nil {
		ord.PaymentIntentID = paymentIntentID
	}
	if customerEmail != nil {
		ord.CustomerEmail = customerEmail
	}
	return nil
}

func (r *fakeOrders) ReplaceItems(_ context.Context, _ db.DBTX, orderID uuid.UUID, items []shared.NewOrderItem) error {
	out := make([]shared.OrderItemSnapshot, 0, len(items))
	for _, item := range items {
		out = append(out, shared.OrderItemSnapshot{
			ID:                uuid.New(),
			OrderID:           orderID,
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			UnitAmountInCents: item.UnitAmountInCents,
			Quantity:          item.Quantity,
			LineTotalInCents:  item.LineTotalInCents,
		})
	}
	r.s.orderItems[orderID] = out
	return nil
}

func (r *fakeOrders) Items(_ context.Context, _ db.DBTX, orderID uuid.UUID) ([]shared.OrderItemSnapshot, error) {
	return r.s.orderItems[orderID], nil
}

type fakeEvents struct{ s *memStore }

func (r *fakeEvents) FindByEventID(_ context.Context, _ db.DBTX, eventID string) (*shared.WebhookEventRecord, error) {
	record, ok := r.s.events[eventID]
	if !ok {
		return nil, notFoundErr("webhook event not found")
	}
	found := *record
	return &found, nil
}

func (r *fakeEvents) Insert(_ context.Context, _ db.DBTX, eventID, eventType string) error {
	if _, ok := r.s.events[eventID]; ok {
		return duplicateErr("webhook event already exists")
	}
	r.s.events[eventID] = &shared.WebhookEventRecord{
		ID:        uuid.New(),
		EventID:   eventID,
		EventType: eventType,
		CreatedAt: r.s.now,
	}
	return nil
}

func (r *fakeEvents) MarkProcessed(_ context.Context, _ db.DBTX, eventID, eventType string, processedAt time.Time) error {
	record, ok := r.s.events[eventID]
	if !ok {
		return notFoundErr("webhook event not found")
	}
	record.EventType = eventType
	record.ProcessedAt = &processedAt
	record.ProcessingError = nil
	return nil
}

func (r *fakeEvents) RecordError(_ context.Context, _ db.DBTX, eventID, eventType, message string) error {
	record, ok := r.s.events[eventID]
	if !ok {
		return notFoundErr("webhook event not found")
	}
	record.EventType = eventType
	record.ProcessingError = &message
	return nil
}

type fakeJobs struct{ s *memStore }

func (r *fakeJobs) CreateJob(_ context.Context, _ db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	r.s.jobs = append(r.s.jobs, memJob{Kind: kind, Topic: topic, Payload: payload, RunAt: runAt})
	return nil
}

// fakeGateway scripts the payment provider for a test.
type fakeGateway struct {
	session      *commands.CheckoutSession
	sessionErr   error
	sessionInput *commands.CheckoutSessionInput
	event        *commands.WebhookEvent
	verifyErr    error
	lines        []commands.SessionLineItem
	lineItemsErr error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, input commands.CheckoutSessionInput) (*commands.CheckoutSession, error) {
	g.sessionInput = &input
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	return g.session, nil
}

func (g *fakeGateway) VerifyWebhook(_ []byte, _ string) (*commands.WebhookEvent, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.event, nil
}

func (g *fakeGateway) SessionLineItems(_ context.Context, _ string) ([]commands.SessionLineItem, error) {
	if g.lineItemsErr != nil {
		return nil, g.lineItemsErr
	}
	return g.lines, nil
}

func (s *memStore) addPublishedProduct(name string, priceInCents int64, stock int32) uuid.UUID {
	id := uuid.New()
	s.products[id] = &shared.ProductSnapshot{
		ID:            id,
		Slug:          name,
		Name:          name,
		Description:   name,
		Category:      product.CategoryTops,
		PriceInCents:  priceInCents,
		StockQuantity: stock,
		Status:        product.StatusPublished,
		CreatedAt:     s.now,
		UpdatedAt:     s.now,
	}
	return id
}
