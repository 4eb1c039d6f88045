package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/yuzvak/retail-coordination-service/internal/domain/checkout"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// BankClient talks to the bank collaborator over JSON HTTP. An unreachable
// bank surfaces as an error; the cash desk keeps its pre-call state.
type BankClient struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewBankClient(baseURL string, timeout time.Duration, log *logger.Logger) *BankClient {
	return &BankClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.WithField("component", "bank-client"),
	}
}

type validateCardRequest struct {
	CardInfo string `json:"card_info"`
	PIN      string `json:"pin"`
}

type validateCardResponse struct {
	Token string `json:"token"`
}

// ValidateCard returns the transaction token, or an empty token for an
// invalid card.
func (c *BankClient) ValidateCard(ctx context.Context, cardInfo, pin string) (string, error) {
	var resp validateCardResponse
	err := c.post(ctx, "/bank/validate-card", validateCardRequest{CardInfo: cardInfo, PIN: pin}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

type debitCardRequest struct {
	Token string `json:"token"`
}

type debitCardResponse struct {
	Result string `json:"result"`
}

func (c *BankClient) DebitCard(ctx context.Context, token string) (checkout.DebitResult, error) {
	var resp debitCardResponse
	err := c.post(ctx, "/bank/debit-card", debitCardRequest{Token: token}, &resp)
	if err != nil {
		return "", err
	}

	switch result := checkout.DebitResult(resp.Result); result {
	case checkout.DebitOK, checkout.DebitInvalidTransactionID, checkout.DebitInsufficientBalance:
		return result, nil
	default:
		return "", fmt.Errorf("bank returned unknown debit result %q", resp.Result)
	}
}

func (c *BankClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bank returned status %d for %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
