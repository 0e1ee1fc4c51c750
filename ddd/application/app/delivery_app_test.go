package app

import (
	"testing"

	"giftvideo-service/pkg/config"
)

func TestDeliverySettingsWithoutConfig(t *testing.T) {
	smtpCfg, smsCfg, baseURL := deliverySettings(nil)

	if smtpCfg != (config.SMTPConfig{}) || smsCfg != (config.SMSConfig{}) {
		t.Errorf("sender configs not zero: smtp=%+v sms=%+v", smtpCfg, smsCfg)
	}
	if baseURL != "" {
		t.Errorf("baseURL = %q, want empty", baseURL)
	}
}

func TestDeliverySettingsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Delivery.SMTP.Host = "smtp.example.com"
	cfg.Delivery.SMS.Endpoint = "https://sms.example.com/send"
	cfg.Public.BaseURL = "https://gifts.example.com"

	smtpCfg, smsCfg, baseURL := deliverySettings(cfg)

	if smtpCfg.Host != "smtp.example.com" {
		t.Errorf("smtp host = %q", smtpCfg.Host)
	}
	if smsCfg.Endpoint != "https://sms.example.com/send" {
		t.Errorf("sms endpoint = %q", smsCfg.Endpoint)
	}
	if baseURL != "https://gifts.example.com" {
		t.Errorf("baseURL = %q", baseURL)
	}
}
