// Package payment talks to the remote payment gateway.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Skotchmaster/storefront/internal/config"
)

const (
	StatusValid     = "VALID"
	StatusValidated = "VALIDATED"
)

var ErrUnknownGateway = errors.New("unknown payment gateway")

type Gateway interface {
	Init(ctx context.Context, req TransactionRequest) (*Session, error)
	Validate(ctx context.Context, valID string) (*Validation, error)
}

// IsValid reports whether a gateway status confirms the payment.
// VALIDATED is what the gateway answers for an already validated transaction.
func IsValid(status string) bool {
	return status == StatusValid || status == StatusValidated
}

type TransactionRequest struct {
	TotalAmount     float64
	Currency        string
	TranID          string
	SuccessURL      string
	FailURL         string
	CancelURL       string
	IPNURL          string
	ShippingMethod  string
	ProductName     string
	ProductCategory string
	ProductProfile  string

	CustomerName     string
	CustomerEmail    string
	CustomerAddress1 string
	CustomerAddress2 string
	CustomerCity     string
	CustomerState    string
	CustomerPostcode string
	CustomerCountry  string
	CustomerPhone    string
	CustomerFax      string

	ShipName     string
	ShipAddress1 string
	ShipAddress2 string
	ShipCity     string
	ShipState    string
	ShipPostcode string
	ShipCountry  string

	MultiCardName string
	ValueA        string
	ValueB        string
	ValueC        string
	ValueD        string
}

// Values encodes the request as the gateway's form fields. Store
// credentials are added by the client.
func (r TransactionRequest) Values() url.Values {
	v := url.Values{}
	v.Set("total_amount", strconv.FormatFloat(r.TotalAmount, 'f', 2, 64))
	v.Set("currency", r.Currency)
	v.Set("tran_id", r.TranID)
	v.Set("success_url", r.SuccessURL)
	v.Set("fail_url", r.FailURL)
	v.Set("cancel_url", r.CancelURL)
	v.Set("ipn_url", r.IPNURL)
	v.Set("shipping_method", r.ShippingMethod)
	v.Set("product_name", r.ProductName)
	v.Set("product_category", r.ProductCategory)
	v.Set("product_profile", r.ProductProfile)
	v.Set("cus_name", r.CustomerName)
	v.Set("cus_email", r.CustomerEmail)
	v.Set("cus_add1", r.CustomerAddress1)
	v.Set("cus_add2", r.CustomerAddress2)
	v.Set("cus_city", r.CustomerCity)
	v.Set("cus_state", r.CustomerState)
	v.Set("cus_postcode", r.CustomerPostcode)
	v.Set("cus_country", r.CustomerCountry)
	v.Set("cus_phone", r.CustomerPhone)
	v.Set("cus_fax", r.CustomerFax)
	v.Set("ship_name", r.ShipName)
	v.Set("ship_add1", r.ShipAddress1)
	v.Set("ship_add2", r.ShipAddress2)
	v.Set("ship_city", r.ShipCity)
	v.Set("ship_state", r.ShipState)
	v.Set("ship_postcode", r.ShipPostcode)
	v.Set("ship_country", r.ShipCountry)
	v.Set("multi_card_name", r.MultiCardName)
	v.Set("value_a", r.ValueA)
	v.Set("value_b", r.ValueB)
	v.Set("value_c", r.ValueC)
	v.Set("value_d", r.ValueD)
	return v
}

// Session is the gateway's answer to a session init. GatewayPageURL is empty
// when the gateway refused the transaction.
type Session struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

type Validation struct {
	Status     string `json:"status"`
	TranID     string `json:"tran_id"`
	ValID      string `json:"val_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	BankTranID string `json:"bank_tran_id"`
	CardType   string `json:"card_type"`
}

// New builds the gateway selected by cfg.PaymentGateway. An unknown mode is
// an error; there is no silent fallback to the mock.
func New(cfg *config.Config) (Gateway, error) {
	switch cfg.PaymentGateway {
	case config.GatewaySSLCommerz:
		return NewSSLCommerz(cfg.SSLCommerzStoreID, cfg.SSLCommerzStorePassword, cfg.SSLCommerzIsLive), nil
	case config.GatewayMock:
		return NewMock(cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGateway, cfg.PaymentGateway)
	}
}
