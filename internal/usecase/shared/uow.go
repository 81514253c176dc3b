package shared

import (
	"context"
	"time"

	"github.com/ed-robles/shop-template/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
}

type Tx interface {
	Carts() CartRepository
	Products() ProductRepository
	Orders() OrderRepository
	WebhookEvents() WebhookEventRepository
	Notifications() NotificationRepository
	Users() UserRepository
	DB() db.DBTX
}

type CartRepository interface {
	FindOrCreateByUser(ctx context.Context, tx db.DBTX, userID uuid.UUID) (uuid.UUID, error)
	FindByUser(ctx context.Context, tx db.DBTX, userID uuid.UUID) (uuid.UUID, error)
	ItemsWithProducts(ctx context.Context, tx db.DBTX, cartID uuid.UUID) ([]CartItemWithProduct, error)
	FindItem(ctx context.Context, tx db.DBTX, cartID, itemID uuid.UUID) (*CartItemRecord, error)
	UpsertItem(ctx context.Context, tx db.DBTX, cartID, productID uuid.UUID, quantity int32) error
	UpdateItemQuantity(ctx context.Context, tx db.DBTX, itemID uuid.UUID, quantity int32) error
	DeleteItem(ctx context.Context, tx db.DBTX, itemID uuid.UUID) error
	DeleteItems(ctx context.Context, tx db.DBTX, itemIDs []uuid.UUID) error
	Clear(ctx context.Context, tx db.DBTX, cartID uuid.UUID) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*ProductSnapshot, error)
	FindPublishedByIDs(ctx context.Context, tx db.DBTX, ids []uuid.UUID) ([]ProductSnapshot, error)
	// DecrementStock succeeds only when the row still holds at least
	// quantity units; the returned row count tells the caller whether
	// the guard matched.
	DecrementStock(ctx context.Context, tx db.DBTX, id uuid.UUID, quantity int32) (int64, error)
	Create(ctx context.Context, tx db.DBTX, p NewProduct) (uuid.UUID, error)
	Update(ctx context.Context, tx db.DBTX, id uuid.UUID, p ProductPatch) error
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error
	FindIDBySlug(ctx context.Context, tx db.DBTX, slug string) (uuid.UUID, error)
	// AssignSKU sets the SKU only when no other row holds it, reporting
	// the matched row count. A guarded update instead of catching the
	// unique violation keeps the surrounding transaction usable for a
	// retry with a fresh value.
	AssignSKU(ctx context.Context, tx db.DBTX, id uuid.UUID, sku string) (int64, error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*OrderSnapshot, error)
	FindBySessionID(ctx context.Context, tx db.DBTX, sessionID string) (*OrderSnapshot, error)
	Create(ctx context.Context, tx db.DBTX, o NewOrder) (uuid.UUID, error)
	UpdateFromSession(ctx context.Context, tx db.DBTX, id uuid.UUID, o OrderUpdate) error
	MarkPaid(ctx context.Context, tx db.DBTX, id uuid.UUID, paymentIntentID, customerEmail *string, paidAt time.Time) error
	MarkPaymentFailed(ctx context.Context, tx db.DBTX, id uuid.UUID, paymentIntentID, customerEmail *string) error
	// MarkStockFailed also clears paid_at so a stale success can never
	// leave a paid timestamp on a failed order.
	MarkStockFailed(ctx context.Context, tx db.DBTX, id uuid.UUID, paymentIntentID, customerEmail *string) error
	ReplaceItems(ctx context.Context, tx db.DBTX, orderID uuid.UUID, items []NewOrderItem) error
	Items(ctx context.Context, tx db.DBTX, orderID uuid.UUID) ([]OrderItemSnapshot, error)
}

type WebhookEventRepository interface {
	FindByEventID(ctx context.Context, tx db.DBTX, eventID string) (*WebhookEventRecord, error)
	// Insert claims an event ID; a concurrent delivery surfaces as a
	// DUPLICATE_KEY repository error.
	Insert(ctx context.Context, tx db.DBTX, eventID, eventType string) error
	MarkProcessed(ctx context.Context, tx db.DBTX, eventID, eventType string, processedAt time.Time) error
	RecordError(ctx context.Context, tx db.DBTX, eventID, eventType, message string) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}

type UserRepository interface {
	Upsert(ctx context.Context, tx db.DBTX, id uuid.UUID, email string) error
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*UserSnapshot, error)
	FindByEmail(ctx context.Context, tx db.DBTX, email string) (*UserSnapshot, error)
}
