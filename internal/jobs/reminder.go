// Package jobs runs scheduled background work.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/iliyamo/salon-reservation/internal/model"
)

// BookingLister returns active bookings matching a filter.
type BookingLister interface {
	ListAll(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error)
}

// SMSSender delivers one text message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// TwilioSender sends SMS through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (t *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)
	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.Sid != nil {
		log.Debug().Str("sid", *resp.Sid).Str("to", to).Msg("sms queued")
	}
	return nil
}

// ReminderJob texts the owner of every booking dated tomorrow.  Owners
// without a phone number are skipped.
type ReminderJob struct {
	bookings BookingLister
	sms      SMSSender
	now      func() time.Time
}

func NewReminderJob(bookings BookingLister, sms SMSSender) *ReminderJob {
	return &ReminderJob{bookings: bookings, sms: sms, now: time.Now}
}

// Run sends the reminders for tomorrow and reports how many were sent and
// how many failed.  One failed message does not stop the rest.
func (j *ReminderJob) Run(ctx context.Context) (sent, failed int, err error) {
	tomorrow := model.NewDate(j.now().UTC()).AddDays(1)
	list, err := j.bookings.ListAll(ctx, model.BookingFilter{Date: &tomorrow})
	if err != nil {
		return 0, 0, fmt.Errorf("list bookings for %s: %w", tomorrow, err)
	}
	for _, b := range list {
		if b.OwnerPhone == nil || strings.TrimSpace(*b.OwnerPhone) == "" {
			continue
		}
		if err := j.sms.SendSMS(ctx, strings.TrimSpace(*b.OwnerPhone), reminderText(b)); err != nil {
			failed++
			log.Warn().Err(err).Uint64("booking_id", b.ID).Msg("reminder sms failed")
			continue
		}
		sent++
	}
	return sent, failed, nil
}

func reminderText(b model.BookingDetail) string {
	return fmt.Sprintf("Hi %s, reminder: your booking #%d at %s is tomorrow (%s) from %s to %s.",
		b.OwnerName, b.ID, b.VenueTitle, b.Date, b.SlotStart, b.SlotEnd)
}

// Schedule registers the job on a new cron scheduler and starts it.  The
// returned scheduler must be stopped on shutdown.
func (j *ReminderJob) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		sent, failed, err := j.Run(ctx)
		if err != nil {
			log.Error().Err(err).Msg("reminder job failed")
			return
		}
		log.Info().Int("sent", sent).Int("failed", failed).Msg("reminder job finished")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	c.Start()
	log.Info().Str("schedule", spec).Msg("reminder scheduler started")
	return c, nil
}
