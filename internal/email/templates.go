package email

import (
	"context"
	"fmt"
)

type BookingEvent string

const (
	BookingRequested BookingEvent = "booking_requested"
	BookingConfirmed BookingEvent = "booking_confirmed"
	BookingCompleted BookingEvent = "booking_completed"
	BookingCanceled  BookingEvent = "booking_canceled"
)

// BookingMessage addresses one participant of a booking about a state change.
type BookingMessage struct {
	Event       BookingEvent
	To          string
	Name        string
	Counterpart string
	OfferTitle  string
	BookingID   int64
	Hours       string
	Reason      string
}

func (s *Service) SendBookingUpdate(ctx context.Context, msg BookingMessage) error {
	subject, body, err := renderBooking(msg)
	if err != nil {
		return err
	}
	return s.Send(ctx, string(msg.Event), msg.To, msg.Name, subject, body)
}

func renderBooking(msg BookingMessage) (string, string, error) {
	var subject, text string

	switch msg.Event {
	case BookingRequested:
		subject = "New booking request - " + msg.OfferTitle
		text = fmt.Sprintf("%s asked to book \"%s\" for %s hours.\nConfirm or cancel booking #%d from your dashboard.",
			msg.Counterpart, msg.OfferTitle, msg.Hours, msg.BookingID)
	case BookingConfirmed:
		subject = "Booking confirmed - " + msg.OfferTitle
		text = fmt.Sprintf("%s confirmed your booking #%d of \"%s\".\n%s hours are now reserved from your wallet.",
			msg.Counterpart, msg.BookingID, msg.OfferTitle, msg.Hours)
	case BookingCompleted:
		subject = "Booking completed - " + msg.OfferTitle
		text = fmt.Sprintf("Booking #%d of \"%s\" with %s is complete.\n%s hours were transferred.",
			msg.BookingID, msg.OfferTitle, msg.Counterpart, msg.Hours)
	case BookingCanceled:
		subject = "Booking canceled - " + msg.OfferTitle
		text = fmt.Sprintf("%s canceled booking #%d of \"%s\".\nReason: %s",
			msg.Counterpart, msg.BookingID, msg.OfferTitle, msg.Reason)
	default:
		return "", "", fmt.Errorf("unknown booking event %q", msg.Event)
	}

	body := fmt.Sprintf("Hi %s,\n\n%s\n\n- Campus Time Bank", msg.Name, text)
	return headerValue(subject), body, nil
}
