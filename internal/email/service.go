package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"timebank/internal/logger"
	"timebank/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey    = "emails"
	failedKey   = "emails:failed"
	maxAttempts = 3
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Config struct {
	From     string
	FromName string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

// Sender delivers one message synchronously.
type Sender interface {
	Deliver(job Job) error
}

type Service struct {
	redis      *redis.Client
	sender     Sender
	retryDelay time.Duration
	popTimeout time.Duration
}

func New(rdb *redis.Client, cfg Config) *Service {
	return &Service{
		redis:      rdb,
		sender:     &smtpSender{cfg: cfg},
		retryDelay: 5 * time.Second,
		popTimeout: 2 * time.Second,
	}
}

func (s *Service) Send(ctx context.Context, jobType, to, name, subject, body string) error {
	job := Job{
		Type:    jobType,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		metrics.RecordEmail(jobType, "queue_failed")
		return fmt.Errorf("queue email to %s: %w", to, err)
	}

	metrics.RecordEmail(jobType, "queued")
	logger.Debug("email queued", "type", jobType, "to", to)
	return nil
}

// Start consumes the queue until ctx is canceled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, s.popTimeout, queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Warn("email queue read failed", "error", err)
			pause(ctx, s.popTimeout)
		}
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("dropping malformed email job", "error", err)
		return
	}

	job.Tries++
	if err := s.sender.Deliver(job); err != nil {
		s.handleFailure(ctx, job, err)
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	metrics.EmailQueueLength.Set(float64(s.QueueLength(ctx)))
	logger.Info("email sent", "type", job.Type, "to", job.To, "attempt", job.Tries)
}

func (s *Service) handleFailure(ctx context.Context, job Job, sendErr error) {
	logger.Warn("email delivery failed", "to", job.To, "attempt", job.Tries, "error", sendErr)

	data, err := json.Marshal(job)
	if err != nil {
		logger.Error("marshal email job", "error", err)
		return
	}

	if job.Tries < maxAttempts {
		// On shutdown the delay is cut short but the job still goes back on the queue.
		pause(ctx, s.retryDelay)
		if err := s.redis.LPush(context.WithoutCancel(ctx), queueKey, data).Err(); err != nil {
			logger.Error("requeue email", "to", job.To, "error", err)
		}
		return
	}

	metrics.RecordEmail(job.Type, "failed")
	failed, _ := json.Marshal(map[string]interface{}{
		"job":   json.RawMessage(data),
		"error": sendErr.Error(),
		"time":  time.Now(),
	})
	if err := s.redis.LPush(ctx, failedKey, failed).Err(); err != nil {
		logger.Error("store failed email", "to", job.To, "error", err)
		return
	}
	logger.Error("email moved to failed queue", "to", job.To, "attempts", job.Tries)
}

// pause waits for d and reports false when ctx ends first.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

type smtpSender struct {
	cfg Config
}

func (s *smtpSender) Deliver(job Job) error {
	var auth smtp.Auth
	if s.cfg.SMTPUser != "" && s.cfg.SMTPPass != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	to := headerValue(job.To)
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, composeMessage(s.cfg, job))
}

// composeMessage renders the RFC 5322 message. Header values are flattened to one
// line so user-supplied text cannot add headers or start the body early.
func composeMessage(cfg Config, job Job) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", headerValue(cfg.FromName), headerValue(cfg.From))
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(job.To))
	fmt.Fprintf(&b, "Subject: %s\r\n", headerValue(job.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(job.Body)
	return []byte(b.String())
}

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func headerValue(v string) string {
	return strings.TrimSpace(headerBreaks.Replace(v))
}
