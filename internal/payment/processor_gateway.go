package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shopflow-be/internal/logger"

	"go.uber.org/zap"
)

const apiVersion = "2025-03-01"

// processorGateway talks to the real payment processor over HTTP.
// Calls carry a bounded timeout and are never retried here.
type processorGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewProcessorGateway(baseURL, apiKey string) Gateway {
	if apiKey == "" {
		logger.L().Warn("payment processor API key is empty")
	}

	return &processorGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *processorGateway) post(ctx context.Context, path string, body any, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}

	req.SetBasicAuth(g.apiKey, "")
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("api-version", apiVersion)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read processor response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("processor error: %s", string(bodyBytes))
	}

	return json.Unmarshal(bodyBytes, out)
}

func (g *processorGateway) Capture(ctx context.Context, amount float64, method string) (*CaptureResult, error) {
	log := logger.L().With(
		zap.Float64("amount", amount),
		zap.String("method", method),
	)

	log.Info("sending capture request to processor")

	var res struct {
		Success       bool            `json:"success"`
		TransactionID string          `json:"transaction_id"`
		Message       string          `json:"message"`
		Response      json.RawMessage `json:"gateway_response"`
	}
	err := g.post(ctx, "/v1/charges", map[string]any{
		"amount": amount,
		"method": method,
	}, &res)
	if err != nil {
		log.Error("capture request failed", zap.Error(err))
		return nil, err
	}

	log.Info("capture response received",
		zap.Bool("success", res.Success),
		zap.String("transaction_id", res.TransactionID),
	)

	return &CaptureResult{
		Success:       res.Success,
		TransactionID: res.TransactionID,
		Message:       res.Message,
		Raw:           res.Response,
	}, nil
}

func (g *processorGateway) Refund(ctx context.Context, transactionID string, amount float64) (*RefundResult, error) {
	log := logger.L().With(
		zap.String("transaction_id", transactionID),
		zap.Float64("amount", amount),
	)

	log.Info("sending refund request to processor")

	var res RefundResult
	err := g.post(ctx, "/v1/refunds", map[string]any{
		"transaction_id": transactionID,
		"amount":         amount,
	}, &res)
	if err != nil {
		log.Error("refund request failed", zap.Error(err))
		return nil, err
	}

	return &res, nil
}
