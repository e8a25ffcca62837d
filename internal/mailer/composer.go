package mailer

import (
	"fmt"
	"net/url"
	"time"

	"github.com/osteele/liquid"
)

// fallbackText is the plain-text part for clients that do not render HTML.
const fallbackText = "This is a fallback plain text message. Please view this email with an HTML-capable email client."

// htmlTemplate is the Liquid source for the HTML part. The pixel sits
// before the visible content so it loads even when rendering is cut off.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{ subject }}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0; background-color: #f4f4f4; }
    .container { max-width: 600px; margin: 20px auto; background-color: #ffffff; border-radius: 8px; overflow: hidden; box-shadow: 0 0 20px rgba(0, 0, 0, 0.1); }
    .header { background-color: #005691; color: #ffffff; text-align: center; padding: 20px; }
    .content { padding: 30px; }
    h1 { color: #005691; margin-top: 0; }
    .cta-button { display: inline-block; background-color: #e20015; color: #ffffff; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold; }
    .footer { background-color: #005691; color: #ffffff; text-align: center; padding: 10px; font-size: 12px; }
  </style>
</head>
<body>
  <img src="{{ pixel_url }}" width="1" height="1" />
  <div class="container">
    <div class="header">
      <h2>{{ sender_name }}</h2>
    </div>
    <div class="content">
      <h1>{{ subject }}</h1>
      <p>Dear Applicant,</p>
      <p>Thank you for your application. We have successfully received it and our team will get back to you as soon as possible regarding the next steps.</p>
      <p>You can check the current status through our portal:</p>
      <p style="text-align: center;">
        <a href="{{ cta_url }}" class="cta-button">Check Application Status</a>
      </p>
      <p>
        Best regards,<br>
        {{ sender_name }}
      </p>
    </div>
    <div class="footer">
      <p>&copy; {{ year }} {{ sender_name }}. All rights reserved.</p>
    </div>
  </div>
</body>
</html>`

// Message is a composed two-part email body.
type Message struct {
	Text string
	HTML string
}

// Composer builds outgoing message bodies around a tracking token. It is
// pure string construction; the token is system-generated so there is no
// validation to do.
type Composer struct {
	tmpl           *liquid.Template
	baseURL        string
	destinationURL string
	senderName     string
	subject        string
}

// NewComposer parses the HTML template once and captures the link
// parameters shared by every message in a batch.
func NewComposer(baseURL, destinationURL, senderName, subject string) (*Composer, error) {
	tmpl, err := liquid.NewEngine().ParseString(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &Composer{
		tmpl:           tmpl,
		baseURL:        baseURL,
		destinationURL: destinationURL,
		senderName:     senderName,
		subject:        subject,
	}, nil
}

// PixelURL returns the open-tracking image URL for a token.
func (c *Composer) PixelURL(token string) string {
	return fmt.Sprintf("%s/track/%s", c.baseURL, token)
}

// ClickURL returns the tracked CTA link for a token. The destination is
// query-encoded so the click handler can extract it verbatim.
func (c *Composer) ClickURL(token string) string {
	return fmt.Sprintf("%s/click/%s?url=%s", c.baseURL, token, url.QueryEscape(c.destinationURL))
}

// Compose renders the two-part body for one tracking token.
func (c *Composer) Compose(token string) (*Message, error) {
	html, err := c.tmpl.RenderString(liquid.Bindings{
		"subject":     c.subject,
		"sender_name": c.senderName,
		"pixel_url":   c.PixelURL(token),
		"cta_url":     c.ClickURL(token),
		"year":        time.Now().Year(),
	})
	if err != nil {
		return nil, fmt.Errorf("render email template: %w", err)
	}
	return &Message{Text: fallbackText, HTML: html}, nil
}
