package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/inkwell/internal/config"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	mailer := NewSESMailerWithClient(client, "no-reply@inkwell.dev", testLogger())

	msg := activationEmail("ana@x.com", "Ana", "https://ui.example.com/activation/abc", 24*time.Hour)
	require.NoError(t, mailer.Send(context.Background(), msg))

	require.NotNil(t, client.input)
	assert.Equal(t, "no-reply@inkwell.dev", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"ana@x.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, msg.Subject, aws.ToString(client.input.Message.Subject.Data))
	assert.Contains(t, aws.ToString(client.input.Message.Body.Html.Data), "https://ui.example.com/activation/abc")

	client.err = errors.New("throttled")
	err := mailer.Send(context.Background(), msg)
	assert.ErrorContains(t, err, "throttled")
}

func TestResendMailer_Send(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/emails"))
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"resend-1"}`))
	}))
	defer srv.Close()

	client := resend.NewClient("re_test")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	mailer := NewResendMailerWithClient(client, "Inkwell <no-reply@inkwell.dev>", testLogger())
	msg := passwordResetEmail("ana@x.com", "Ana", "https://ui.example.com/new-password/xyz", 3*time.Hour)

	require.NoError(t, mailer.Send(context.Background(), msg))
	assert.Equal(t, "Inkwell <no-reply@inkwell.dev>", got["from"])
	assert.Equal(t, msg.Subject, got["subject"])
}

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	mailer := NewLogMailer(slog.New(slog.NewTextHandler(&buf, nil)), "development")

	msg := passwordResetEmail("ana@x.com", "Ana", "https://ui.example.com/new-password/xyz", 3*time.Hour)
	require.NoError(t, mailer.Send(context.Background(), msg))
	assert.Contains(t, buf.String(), "new-password/xyz")
	assert.Contains(t, buf.String(), "ana@x.com")
}

func TestLogMailer_RedactsInProduction(t *testing.T) {
	var buf bytes.Buffer
	mailer := NewLogMailer(slog.New(slog.NewTextHandler(&buf, nil)), "production")

	msg := activationEmail("ana@x.com", "Ana", "https://ui.example.com/activation/live-token", 24*time.Hour)
	require.NoError(t, mailer.Send(context.Background(), msg))

	out := buf.String()
	assert.NotContains(t, out, "live-token")
	assert.NotContains(t, out, "ana@x.com")
	assert.Contains(t, out, "[REDACTED]")
	assert.Contains(t, out, msg.Subject)
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(context.Background(), config.MailConfig{Provider: config.MailProviderLog}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	m, err = NewMailer(context.Background(), config.MailConfig{Provider: config.MailProviderResend, ResendAPIKey: "re_test", From: "a@b.c"}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &ResendMailer{}, m)

	_, err = NewMailer(context.Background(), config.MailConfig{Provider: "carrier-pigeon"}, testLogger())
	assert.Error(t, err)
}

func TestEmailTemplates_EscapeName(t *testing.T) {
	msg := activationEmail("ana@x.com", "<b>Ana</b>", "https://ui.example.com/activation/abc", 24*time.Hour)

	assert.NotContains(t, msg.HTML, "<b>Ana</b>")
	assert.Contains(t, msg.HTML, "&lt;b&gt;Ana&lt;/b&gt;")
	assert.Contains(t, msg.Text, "24 hours")

	reset := passwordResetEmail("ana@x.com", "Ana", "https://ui.example.com/new-password/xyz", 3*time.Hour)
	assert.Contains(t, reset.Text, "3 hours")
	assert.Equal(t, "ana@x.com", reset.To)
}
