package services

import (
	"fmt"
	"html"
	"time"
)

const emailLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .button { display: inline-block; background-color: #1f2937; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        %s
        <div class="footer">
            <p>This is an automated message from Inkwell. Please do not reply.</p>
        </div>
    </div>
</body>
</html>
`

func activationEmail(to, name, activationURL string, ttl time.Duration) Message {
	link := html.EscapeString(activationURL)
	body := fmt.Sprintf(`<p>Hi %s,</p>
        <p>Welcome to Inkwell. Confirm your email address to activate your account:</p>
        <p><a href="%s" class="button">Activate account</a></p>
        <p>Or paste this link in your browser:<br><code>%s</code></p>
        <p>The link expires in %s. If you did not sign up, ignore this email.</p>`,
		html.EscapeString(name), link, link, humanDuration(ttl))

	text := fmt.Sprintf(`Hi %s,

Welcome to Inkwell. Confirm your email address to activate your account:

%s

The link expires in %s. If you did not sign up, ignore this email.
`, name, activationURL, humanDuration(ttl))

	return Message{
		To:      to,
		Subject: "Activate your Inkwell account",
		HTML:    fmt.Sprintf(emailLayout, "Activate your account", body),
		Text:    text,
	}
}

func passwordResetEmail(to, name, resetURL string, ttl time.Duration) Message {
	link := html.EscapeString(resetURL)
	body := fmt.Sprintf(`<p>Hi %s,</p>
        <p>We received a request to reset your password. Choose a new one here:</p>
        <p><a href="%s" class="button">Reset password</a></p>
        <p>Or paste this link in your browser:<br><code>%s</code></p>
        <p>The link expires in %s. If you did not ask for a reset, your password stays unchanged.</p>`,
		html.EscapeString(name), link, link, humanDuration(ttl))

	text := fmt.Sprintf(`Hi %s,

We received a request to reset your password. Choose a new one here:

%s

The link expires in %s. If you did not ask for a reset, your password stays unchanged.
`, name, resetURL, humanDuration(ttl))

	return Message{
		To:      to,
		Subject: "Reset your Inkwell password",
		HTML:    fmt.Sprintf(emailLayout, "Reset your password", body),
		Text:    text,
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= 48*time.Hour:
		return fmt.Sprintf("%d days", int(d.Hours()/24))
	case d >= 2*time.Hour:
		return fmt.Sprintf("%d hours", int(d.Hours()))
	case d >= time.Hour:
		return "1 hour"
	default:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
}
