package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"

	"qrmenu-backend/internal/models"
)

const namePlaceholder = "{{name}}"

type Recipient struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

type CampaignResult struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// Campaign sends one email per recipient through a bounded worker pool and
// records a single summary notification.
type Campaign struct {
	log     *Log
	workers int
}

func NewCampaign(log *Log, workers int) *Campaign {
	if workers <= 0 {
		workers = 4
	}
	return &Campaign{log: log, workers: workers}
}

// Broadcast replaces {{name}} in body with each recipient's name.
func (c *Campaign) Broadcast(ctx context.Context, recipients []Recipient, subject, body string) (CampaignResult, error) {
	pool, err := ants.NewPool(c.workers)
	if err != nil {
		return CampaignResult{}, errors.Wrap(err, "campaign pool")
	}
	defer pool.Release()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		res CampaignResult
	)
	record := func(r Recipient, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", r.Email, err))
			return
		}
		res.Sent++
	}

	for _, r := range recipients {
		r := r
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			personal := strings.ReplaceAll(body, namePlaceholder, r.Name)
			record(r, c.log.deliver(ctx, r.Email, r.Name, subject, personal))
		})
		if submitErr != nil {
			wg.Done()
			record(r, submitErr)
		}
	}
	wg.Wait()

	typ := models.NotificationSuccess
	if res.Failed > 0 {
		typ = models.NotificationWarning
	}
	c.log.Add(models.NewNotification{
		Title:   "Campagne envoyée",
		Message: fmt.Sprintf("« %s » : %d email(s) envoyé(s), %d échec(s).", subject, res.Sent, res.Failed),
		Type:    typ,
	})
	return res, nil
}
