package model

// ProviderOrder is the descriptor handed back to the payment widget by orderCreate.
type ProviderOrder struct {
	ID         string `json:"id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	ApproveURL string `json:"approve_url,omitempty"`
}

// Approval is what the widget posts once the buyer confirmed the payment.
type Approval struct {
	OrderID string `json:"order_id"`
	PayerID string `json:"payer_id,omitempty"`
	Nonce   string `json:"nonce,omitempty"` // braintree drop-in
	Amount  string `json:"-"`
}

type CaptureDetails struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	PayerID string `json:"payer_id,omitempty"`
	Amount  string `json:"amount,omitempty"`
}

// paypal orders v2 wire types

type Payer struct {
	PayerID string `json:"payer_id"`
	Email   string `json:"email_address"`
}

type PaypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type Amount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type Capture struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount Amount `json:"amount"`
}

type Payments struct {
	Captures []Capture `json:"captures"`
}

type PurchaseUnit struct {
	ReferenceID string    `json:"reference_id,omitempty"`
	Amount      *Amount   `json:"amount,omitempty"`
	Payments    *Payments `json:"payments,omitempty"`
}

type PaypalResult struct {
	ID            string         `json:"id"`
	Links         []PaypalLink   `json:"links"`
	Status        string         `json:"status"`
	Payer         Payer          `json:"payer"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
}
