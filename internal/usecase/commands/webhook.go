package commands

import (
	"context"
	"log/slog"

	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/infra/db"
	"github.com/ed-robles/shop-template/internal/pkg/clock"
	"github.com/ed-robles/shop-template/internal/pkg/errs"
	"github.com/ed-robles/shop-template/internal/usecase/shared"
)

var (
	ErrMissingSignature  = errs.New("missing webhook signature")
	ErrInvalidSignature  = errs.New("invalid webhook signature")
	ErrWebhookProcessing = errs.New("webhook processing failed")
)

type WebhookResult struct {
	Duplicate bool
}

type WebhookCommands interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
}

type webhookUseCaseImpl struct {
	uow       shared.UnitOfWork
	gateway   PaymentGateway
	ledger    shared.WebhookEventRepository
	finalizer *orderFinalizer
	clock     clock.Clock
}

func NewWebhookUseCase(uow shared.UnitOfWork, gateway PaymentGateway, ledger shared.WebhookEventRepository, clk clock.Clock) WebhookCommands {
	return &webhookUseCaseImpl{
		uow:       uow,
		gateway:   gateway,
		ledger:    ledger,
		finalizer: newOrderFinalizer(uow, clk),
		clock:     clk,
	}
}

// HandleEvent verifies the delivery, claims its event ID in the ledger,
// and dispatches it. A delivery whose ID was already processed is
// acknowledged without side effects; a claimed but unfinished ID is
// processed again so crashed handlers self-heal on redelivery.
func (uc *webhookUseCaseImpl) HandleEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if signature == "" {
		return nil, ErrMissingSignature
	}

	event, err := uc.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidSignature)
	}

	duplicate, err := uc.claimEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return &WebhookResult{Duplicate: true}, nil
	}

	if err := uc.dispatch(ctx, event); err != nil {
		uc.recordError(ctx, event, err)
		return nil, errs.Mark(err, ErrWebhookProcessing)
	}

	err = uc.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		return uc.ledger.MarkProcessed(ctx, dbtx, event.ID, event.Type, uc.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	return &WebhookResult{}, nil
}

// claimEvent reports true when a previous delivery already finished the
// event. Losing the insert race falls through to a re-read so the
// winner's outcome decides.
func (uc *webhookUseCaseImpl) claimEvent(ctx context.Context, event *WebhookEvent) (bool, error) {
	duplicate := false
	err := uc.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		existing, err := uc.ledger.FindByEventID(ctx, dbtx, event.ID)
		if err != nil && !isNotFound(err) {
			return err
		}
		if existing != nil {
			duplicate = existing.ProcessedAt != nil
			return nil
		}

		if err := uc.ledger.Insert(ctx, dbtx, event.ID, event.Type); err != nil {
			if !infra.IsKind(err, infra.KindDuplicateKey) {
				return err
			}
			raced, err := uc.ledger.FindByEventID(ctx, dbtx, event.ID)
			if err != nil && !isNotFound(err) {
				return err
			}
			duplicate = raced != nil && raced.ProcessedAt != nil
		}
		return nil
	})
	return duplicate, err
}

func (uc *webhookUseCaseImpl) dispatch(ctx context.Context, event *WebhookEvent) error {
	switch event.Type {
	case EventCheckoutCompleted:
		lines, err := uc.gateway.SessionLineItems(ctx, event.SessionID)
		if err != nil {
			return err
		}
		if event.PaymentStatus == PaymentStatusPaid {
			_, err = uc.finalizer.finalizePaid(ctx, event, lines)
		} else {
			_, err = uc.finalizer.upsertFromSession(ctx, event, lines)
		}
		return err

	case EventAsyncPaymentSucceeded:
		lines, err := uc.gateway.SessionLineItems(ctx, event.SessionID)
		if err != nil {
			return err
		}
		_, err = uc.finalizer.finalizePaid(ctx, event, lines)
		return err

	case EventAsyncPaymentFailed:
		lines, err := uc.gateway.SessionLineItems(ctx, event.SessionID)
		if err != nil {
			return err
		}
		_, err = uc.finalizer.markPaymentFailed(ctx, event, lines)
		return err

	default:
		// Unhandled event types are acknowledged and ledgered only.
		return nil
	}
}

// recordError is best effort; the delivery already failed and the
// provider will retry it.
func (uc *webhookUseCaseImpl) recordError(ctx context.Context, event *WebhookEvent, cause error) {
	err := uc.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		return uc.ledger.RecordError(ctx, dbtx, event.ID, event.Type, cause.Error())
	})
	if err != nil {
		slog.Warn("failed to record webhook processing error",
			"event_id", event.ID,
			"error", err.Error())
	}
}
