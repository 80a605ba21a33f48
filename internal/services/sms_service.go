package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// SMSService dispatches one-time codes through an external SMS gateway.
// The gateway is an opaque collaborator: the core only depends on
// success/failure of the send.
type SMSService struct {
	gatewayURL string
	token      string
	sender     string
	log        *zap.Logger
}

// NewSMSService creates an SMSService. An empty gateway URL leaves the
// service in log-only mode, which is only acceptable outside production.
func NewSMSService(gatewayURL, token, sender string, log *zap.Logger) *SMSService {
	return &SMSService{
		gatewayURL: gatewayURL,
		token:      token,
		sender:     sender,
		log:        log,
	}
}

type smsMessage struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

// SendCode delivers a verification code to the phone number.
func (s *SMSService) SendCode(phone, code string) error {
	if s.gatewayURL == "" {
		s.log.Info("sms gateway not configured, code not dispatched",
			zap.String("phone", phone),
			zap.String("code", code),
		)
		return nil
	}

	msg := smsMessage{
		To:      phone,
		From:    s.sender,
		Message: fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms dispatch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	return nil
}
