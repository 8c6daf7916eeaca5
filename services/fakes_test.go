package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ashin12345678/pfc-balance-app/models"
	"github.com/ashin12345678/pfc-balance-app/utils"
)

// scriptedAI answers with the queued replies in order, repeating the last.
type scriptedAI struct {
	mu      sync.Mutex
	replies []aiReply
	prompts []string
}

type aiReply struct {
	text string
	err  error
}

func (s *scriptedAI) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return r.text, r.err
}

func (s *scriptedAI) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// instantPolicy retries like production but never sleeps.
func instantPolicy(delays *[]time.Duration) utils.RetryPolicy {
	p := utils.DefaultRetryPolicy()
	p.Sleep = func(_ context.Context, d time.Duration) error {
		if delays != nil {
			*delays = append(*delays, d)
		}
		return nil
	}
	return p
}

type fakeFetcher struct {
	product *models.FoodProduct
	err     error
	calls   int
}

func (f *fakeFetcher) FetchProduct(context.Context, string) (*models.FoodProduct, error) {
	f.calls++
	return f.product, f.err
}

type memProductStore struct {
	byCode map[string]*models.FoodProduct
	saves  int
}

func newMemProductStore() *memProductStore {
	return &memProductStore{byCode: map[string]*models.FoodProduct{}}
}

func (m *memProductStore) FindByBarcode(_ context.Context, code string) (*models.FoodProduct, error) {
	return m.byCode[code], nil
}

func (m *memProductStore) Save(_ context.Context, p *models.FoodProduct) error {
	m.saves++
	m.byCode[p.Barcode] = p
	return nil
}

type fakeLabels struct {
	labels []string
	err    error
}

func (f fakeLabels) RecognizeLabels(context.Context, string) ([]string, error) {
	return f.labels, f.err
}
