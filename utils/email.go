// utils/email.go
package utils

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/keighl/postmark"
	"github.com/sony/gobreaker/v2"

	"github.com/Mishael-Joe/soraxi/models"
	"github.com/Mishael-Joe/soraxi/pricing"
)

// EmailService handles sending emails using Postmark. Sends go through a
// circuit breaker so a Postmark outage cannot pile up request goroutines.
type EmailService struct {
	client  *postmark.Client
	sender  string
	breaker *gobreaker.CircuitBreaker[postmark.EmailResponse]
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService() *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		panic("POSTMARK_API_TOKEN is not set in environment variables")
	}

	breaker := gobreaker.NewCircuitBreaker[postmark.EmailResponse](gobreaker.Settings{
		Name:    "postmark",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &EmailService{
		client:  postmark.NewClient(apiToken, ""),
		sender:  os.Getenv("EMAIL_SENDER"),
		breaker: breaker,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.breaker.Execute(func() (postmark.EmailResponse, error) {
		return es.client.SendEmail(postmark.Email{
			From:     es.sender,
			To:       toEmail,
			Subject:  subject,
			HtmlBody: htmlContent,
			TextBody: htmlContent,
		})
	})

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	subject := "Verify Your Email"
	verificationLink := fmt.Sprintf("%s/verify?token=%s", os.Getenv("APP_BASE_URL"), token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		verificationLink,
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmationEmail(toEmail, firstName string, order *models.Order) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Total Amount: <strong>%s</strong><br>Payment Reference: <strong>%s</strong><br><br>Each store ships its part of your order separately, and funds stay in escrow until you confirm delivery.<br><br>Thank you for shopping with us!",
		firstName,
		order.ID.Hex(),
		pricing.FormatKobo(order.TotalAmount),
		order.PaymentRef,
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendDeliveryStatusEmail tells the customer a store moved their sub-order to
// a new delivery status.
func (es *EmailService) SendDeliveryStatusEmail(toEmail, firstName, storeName, orderID string, status models.DeliveryStatus) error {
	subject := fmt.Sprintf("Order Update: %s", status)
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>The items from <strong>%s</strong> in your order (ID: %s) are now <strong>%s</strong>.<br><br>Thank you for shopping with us!",
		firstName,
		storeName,
		orderID,
		status,
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}
