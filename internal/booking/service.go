package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timebank/internal/api"
	"timebank/internal/auth"
	"timebank/internal/db"
	"timebank/internal/email"
	"timebank/internal/logger"
	"timebank/internal/metrics"
	"timebank/internal/offer"
	"timebank/internal/transaction"
	"timebank/internal/user"
	"timebank/internal/wallet"
)

type Service interface {
	Create(ctx context.Context, caller auth.Identity, req CreateRequest) (*Booking, error)
	Confirm(ctx context.Context, caller auth.Identity, bookingID int64) (*Booking, error)
	Complete(ctx context.Context, caller auth.Identity, bookingID int64) (*Booking, error)
	Cancel(ctx context.Context, caller auth.Identity, bookingID int64, reason string) (*Booking, error)
	GetByID(ctx context.Context, bookingID int64) (*Booking, error)
	ListMineAsRequester(ctx context.Context, caller auth.Identity, page api.PageRequest) (api.Page[Booking], error)
	ListMineAsOwner(ctx context.Context, caller auth.Identity, page api.PageRequest) (api.Page[Booking], error)
	ListByOffer(ctx context.Context, offerID int64, page api.PageRequest) (api.Page[Booking], error)
	ListByStatus(ctx context.Context, rawStatus string, page api.PageRequest) (api.Page[Booking], error)
}

type OfferReader interface {
	GetByID(ctx context.Context, id int64) (*offer.Offer, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

type LedgerWriter interface {
	Create(ctx context.Context, tx *transaction.Transaction) error
}

// Notifier is implemented by email.Service.
type Notifier interface {
	SendBookingUpdate(ctx context.Context, msg email.BookingMessage) error
}

type service struct {
	repo     Repository
	offers   OfferReader
	users    UserFinder
	wallets  wallet.Repository
	ledger   LedgerWriter
	tx       db.Transactor
	notifier Notifier
	now      func() time.Time
}

func NewService(
	repo Repository,
	offers OfferReader,
	users UserFinder,
	wallets wallet.Repository,
	ledger LedgerWriter,
	tx db.Transactor,
	notifier Notifier,
) Service {
	return &service{
		repo:     repo,
		offers:   offers,
		users:    users,
		wallets:  wallets,
		ledger:   ledger,
		tx:       tx,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *service) Create(ctx context.Context, caller auth.Identity, req CreateRequest) (*Booking, error) {
	o, err := s.offers.GetByID(ctx, req.OfferID)
	if err != nil {
		return nil, err
	}
	if !o.IsAvailable() {
		return nil, ErrOfferUnavailable
	}
	if o.OwnerID == caller.UserID {
		return nil, ErrSelfBooking
	}

	hours := req.Hours
	if hours.IsZero() {
		hours = o.HoursRate
	}
	if err := wallet.ValidateAmount(hours); err != nil {
		return nil, ErrInvalidHours
	}

	requester, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if !requester.Active {
		return nil, user.ErrAccountDisabled
	}
	owner, err := s.users.FindByID(ctx, o.OwnerID)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		OfferID:        o.ID,
		OfferTitle:     o.Title,
		OwnerID:        owner.ID,
		OwnerName:      owner.FullName(),
		OwnerEmail:     owner.Email,
		RequesterID:    requester.ID,
		RequesterName:  requester.FullName(),
		RequesterEmail: requester.Email,
		Status:         StatusPending,
		ReservedHours:  hours,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	metrics.RecordBookingTransition(string(StatusPending))
	logger.Info("booking created", "booking_id", b.ID, "offer_id", b.OfferID, "requester_id", b.RequesterID)
	s.notify(ctx, b, email.BookingRequested, b.OwnerID, "")
	return b, nil
}

// Confirm reserves the booked hours from the requester's wallet.
func (s *service) Confirm(ctx context.Context, caller auth.Identity, bookingID int64) (*Booking, error) {
	var b *Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.OwnerID != caller.UserID {
			return ErrNotOfferOwner
		}

		if err := b.Confirm(s.now()); err != nil {
			return err
		}

		if err := s.moveHours(ctx, b, b.RequesterID, transaction.TypeReserve); err != nil {
			return err
		}
		return s.repo.UpdateStatus(ctx, b, StatusPending)
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(b, transaction.TypeReserve)
	s.notify(ctx, b, email.BookingConfirmed, b.RequesterID, "")
	return b, nil
}

// Complete credits the reserved hours to the offer owner.
func (s *service) Complete(ctx context.Context, caller auth.Identity, bookingID int64) (*Booking, error) {
	var b *Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.OwnerID != caller.UserID {
			return ErrNotOfferOwner
		}

		if err := b.Complete(s.now()); err != nil {
			return err
		}

		if err := s.moveHours(ctx, b, b.OwnerID, transaction.TypeCommit); err != nil {
			return err
		}
		return s.repo.UpdateStatus(ctx, b, StatusConfirmed)
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(b, transaction.TypeCommit)
	s.notify(ctx, b, email.BookingCompleted, b.RequesterID, "")
	return b, nil
}

// Cancel returns reserved hours to the requester when the booking was already confirmed.
func (s *service) Cancel(ctx context.Context, caller auth.Identity, bookingID int64, reason string) (*Booking, error) {
	var (
		b    *Booking
		from Status
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsParticipant(caller.UserID) {
			return ErrNotParticipant
		}

		from = b.Status
		if err := b.Cancel(reason, s.now()); err != nil {
			return err
		}

		if from == StatusConfirmed {
			if err := s.moveHours(ctx, b, b.RequesterID, transaction.TypeRelease); err != nil {
				return err
			}
		}
		return s.repo.UpdateStatus(ctx, b, from)
	})
	if err != nil {
		return nil, err
	}

	if from == StatusConfirmed {
		s.recordTransition(b, transaction.TypeRelease)
	} else {
		metrics.RecordBookingTransition(string(StatusCanceled))
		logger.Info("booking canceled", "booking_id", b.ID, "from", from)
	}

	notifyUser := b.OwnerID
	if caller.UserID == b.OwnerID {
		notifyUser = b.RequesterID
	}
	s.notify(ctx, b, email.BookingCanceled, notifyUser, *b.CancelReason)
	return b, nil
}

// moveHours applies the wallet effect of one transition and appends its audit row.
func (s *service) moveHours(ctx context.Context, b *Booking, userID int64, txType transaction.Type) error {
	w, err := s.wallets.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return err
	}

	var description string
	switch txType {
	case transaction.TypeReserve:
		if !w.HasBalance(b.ReservedHours) {
			return ErrInsufficientHours
		}
		err = w.DeductBalance(b.ReservedHours)
		description = "Reserved hours for booking offer: " + b.OfferTitle
	case transaction.TypeCommit:
		err = w.AddBalance(b.ReservedHours)
		description = "Received hours from booking: " + b.OfferTitle
	case transaction.TypeRelease:
		err = w.ReleaseBalance(b.ReservedHours)
		description = "Released hours from canceled booking: " + b.OfferTitle
	default:
		return fmt.Errorf("unsupported settlement type %s", txType)
	}
	if errors.Is(err, wallet.ErrInsufficientBalance) {
		return ErrInsufficientHours
	}
	if err != nil {
		return err
	}

	if err := s.wallets.Update(ctx, w); err != nil {
		return fmt.Errorf("update wallet of user %d: %w", userID, err)
	}

	bookingID := b.ID
	return s.ledger.Create(ctx, &transaction.Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      b.ReservedHours,
		BookingID:   &bookingID,
		Description: description,
		Status:      transaction.StatusCompleted,
	})
}

func (s *service) recordTransition(b *Booking, txType transaction.Type) {
	metrics.RecordBookingTransition(string(b.Status))
	metrics.RecordHoursMoved(string(txType), b.ReservedHours.InexactFloat64())
	logger.Info("booking settled",
		"booking_id", b.ID,
		"status", b.Status,
		"transaction_type", txType,
		"hours", b.ReservedHours.StringFixed(2),
	)
}

// notify runs after commit; delivery problems never fail the request.
func (s *service) notify(ctx context.Context, b *Booking, event email.BookingEvent, toUserID int64, reason string) {
	if s.notifier == nil {
		return
	}

	msg := email.BookingMessage{
		Event:      event,
		OfferTitle: b.OfferTitle,
		BookingID:  b.ID,
		Hours:      b.ReservedHours.StringFixed(2),
		Reason:     reason,
	}
	if toUserID == b.OwnerID {
		msg.To, msg.Name, msg.Counterpart = b.OwnerEmail, b.OwnerName, b.RequesterName
	} else {
		msg.To, msg.Name, msg.Counterpart = b.RequesterEmail, b.RequesterName, b.OwnerName
	}

	if err := s.notifier.SendBookingUpdate(ctx, msg); err != nil {
		logger.Warn("booking notification not queued", "booking_id", b.ID, "event", event, "error", err)
	}
}

func (s *service) GetByID(ctx context.Context, bookingID int64) (*Booking, error) {
	return s.repo.GetByID(ctx, bookingID)
}

func (s *service) ListMineAsRequester(ctx context.Context, caller auth.Identity, page api.PageRequest) (api.Page[Booking], error) {
	bookings, total, err := s.repo.ListByRequester(ctx, caller.UserID, page)
	if err != nil {
		return api.Page[Booking]{}, err
	}
	return api.NewPage(bookings, page, total), nil
}

func (s *service) ListMineAsOwner(ctx context.Context, caller auth.Identity, page api.PageRequest) (api.Page[Booking], error) {
	bookings, total, err := s.repo.ListByOwner(ctx, caller.UserID, page)
	if err != nil {
		return api.Page[Booking]{}, err
	}
	return api.NewPage(bookings, page, total), nil
}

func (s *service) ListByOffer(ctx context.Context, offerID int64, page api.PageRequest) (api.Page[Booking], error) {
	bookings, total, err := s.repo.ListByOffer(ctx, offerID, page)
	if err != nil {
		return api.Page[Booking]{}, err
	}
	return api.NewPage(bookings, page, total), nil
}

func (s *service) ListByStatus(ctx context.Context, rawStatus string, page api.PageRequest) (api.Page[Booking], error) {
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return api.Page[Booking]{}, err
	}

	bookings, total, err := s.repo.ListByStatus(ctx, status, page)
	if err != nil {
		return api.Page[Booking]{}, err
	}
	return api.NewPage(bookings, page, total), nil
}
