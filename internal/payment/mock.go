package payment

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// Mock accepts every transaction. It is selected with PAYMENT_GATEWAY=mock
// and used by tests, which may override its answers.
type Mock struct {
	mu sync.Mutex

	PageURL      string
	InitErr      error
	ValidStatus  string
	ValidateErr  error
	Requests     []TransactionRequest
	ValidatedIDs []string
}

func NewMock(baseURL string) *Mock {
	return &Mock{
		PageURL:     strings.TrimSuffix(baseURL, "/") + "/mock-gateway",
		ValidStatus: StatusValid,
	}
}

func (m *Mock) Init(_ context.Context, req TransactionRequest) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.InitErr != nil {
		return nil, m.InitErr
	}
	if m.PageURL == "" {
		return &Session{Status: "FAILED", FailedReason: "mock refused"}, nil
	}
	return &Session{
		Status:         "SUCCESS",
		SessionKey:     "mock-" + req.TranID,
		GatewayPageURL: m.PageURL + "?tran_id=" + url.QueryEscape(req.TranID),
	}, nil
}

func (m *Mock) Validate(_ context.Context, valID string) (*Validation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ValidatedIDs = append(m.ValidatedIDs, valID)
	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}
	return &Validation{Status: m.ValidStatus, ValID: valID}, nil
}

func (m *Mock) LastRequest() (TransactionRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return TransactionRequest{}, false
	}
	return m.Requests[len(m.Requests)-1], true
}
