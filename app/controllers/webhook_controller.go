package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/pledgefox/PledgeFox/internal/pkg/billing"
	"github.com/pledgefox/PledgeFox/internal/pkg/env"
)

var webhookIngest *billing.IngestService

// InitializeWebhookController wires the webhook ingest pipeline.
func InitializeWebhookController(ingest *billing.IngestService) {
	webhookIngest = ingest
}

// HandleBillingWebhook receives lifecycle events from the billing functions.
// Every delivery is stored with the outcome of the HMAC check, but only
// verified deliveries are processed; duplicates are acknowledged as-is.
func HandleBillingWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	if len(payload) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "empty payload"})
	}

	secret := env.GetEnv("BILLING_WEBHOOK_SECRET", "")
	signature := c.Get("X-Billing-Signature")
	signatureValid := billing.VerifyWebhookSignature(payload, signature, secret)

	created, err := webhookIngest.Ingest(c.Context(), payload, signatureValid)
	if err != nil {
		log.Printf("Webhook ingest failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !created {
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}
	if !signatureValid {
		log.Printf("Webhook signature rejected from %s", GetClientIP(c))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
	}

	return c.JSON(fiber.Map{"received": true, "duplicate": false})
}
