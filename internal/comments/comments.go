// Package comments handles the free-text feedback flow from the
// comments screen.
package comments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"menukiosk/internal/gateway"
	"menukiosk/pkg/dates"
	"menukiosk/pkg/models"
)

// MaxLength bounds the comment body, mirroring the input limit on the
// comments screen.
const MaxLength = 500

var (
	ErrEmpty   = errors.New("comment is empty")
	ErrTooLong = fmt.Errorf("comment exceeds %d characters", MaxLength)
)

type Sender interface {
	SubmitComment(ctx context.Context, req models.CommentRequest) (gateway.Ack, error)
}

type Service struct {
	Sender Sender
	Logger *log.Logger
}

func NewService(sender Sender, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{Sender: sender, Logger: logger}
}

// Submit validates and sends one comment. The date may be ISO or the
// backend's D/M/YYYY form; the main dish is denormalized into the
// request so the kitchen sees what the comment was about even if the
// menu changes later.
func (s *Service) Submit(ctx context.Context, date, mainDish, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return ErrEmpty
	}
	if utf8.RuneCountInString(body) > MaxLength {
		return ErrTooLong
	}

	fecha := date
	if strings.Contains(date, "-") {
		converted, err := dates.ISOToAPI(date)
		if err != nil {
			return fmt.Errorf("comment date: %w", err)
		}
		fecha = converted
	}

	// Correlation id for tracing fire-and-forget submissions in logs.
	id := uuid.NewString()
	ack, err := s.Sender.SubmitComment(ctx, models.CommentRequest{
		Fecha:    fecha,
		MainDish: mainDish,
		Body:     body,
	})
	if err != nil {
		s.Logger.Printf("[comments] %s submit failed: %v", id, err)
		return err
	}
	s.Logger.Printf("[comments] %s submitted for %s (ok=%v)", id, fecha, ack.OK)
	return nil
}
