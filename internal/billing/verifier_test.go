package billing

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"hash/crc32"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testWebhookID = "WH-TEST-1"

// newSigningFixture generates a self-signed certificate, serves it over a
// test TLS server and returns a verifier wired to trust that server.
func newSigningFixture(t *testing.T) (*Verifier, *rsa.PrivateKey, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "webhook-signing-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(certPEM)
	}))
	t.Cleanup(srv.Close)

	parsed, err := url.Parse(srv.URL)
	require.NoError(t, err)

	v := NewVerifier(testWebhookID, parsed.Host, zap.NewNop())
	v.httpClient = srv.Client()

	return v, key, srv.URL + "/cert.pem"
}

func sign(t *testing.T, key *rsa.PrivateKey, transmissionID, transmissionTime string, body []byte) string {
	t.Helper()
	message := fmt.Sprintf("%s|%s|%s|%d", transmissionID, transmissionTime, testWebhookID, crc32.ChecksumIEEE(body))
	digest := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(sig)
}

func TestVerifyValidSignature(t *testing.T) {
	v, key, certURL := newSigningFixture(t)
	body := []byte(`{"id":"WH-1","event_type":"BILLING.SUBSCRIPTION.ACTIVATED"}`)

	headers := WebhookHeaders{
		TransmissionID:   "tx-1",
		TransmissionTime: "2025-06-02T10:00:00Z",
		Signature:        sign(t, key, "tx-1", "2025-06-02T10:00:00Z", body),
		CertURL:          certURL,
		AuthAlgo:         "SHA256withRSA",
	}

	assert.NoError(t, v.Verify(context.Background(), headers, body))
}

func TestVerifyTamperedBody(t *testing.T) {
	v, key, certURL := newSigningFixture(t)
	body := []byte(`{"id":"WH-1"}`)

	headers := WebhookHeaders{
		TransmissionID:   "tx-1",
		TransmissionTime: "2025-06-02T10:00:00Z",
		Signature:        sign(t, key, "tx-1", "2025-06-02T10:00:00Z", body),
		CertURL:          certURL,
	}

	tampered := []byte(`{"id":"WH-2"}`)
	assert.ErrorIs(t, v.Verify(context.Background(), headers, tampered), ErrInvalidSignature)
}

func TestVerifyMissingHeaders(t *testing.T) {
	v, _, _ := newSigningFixture(t)

	err := v.Verify(context.Background(), WebhookHeaders{}, []byte("{}"))
	assert.ErrorIs(t, err, ErrMissingHeaders)
}

func TestVerifyUnsupportedAlgo(t *testing.T) {
	v, key, certURL := newSigningFixture(t)
	body := []byte("{}")

	headers := WebhookHeaders{
		TransmissionID:   "tx-1",
		TransmissionTime: "2025-06-02T10:00:00Z",
		Signature:        sign(t, key, "tx-1", "2025-06-02T10:00:00Z", body),
		CertURL:          certURL,
		AuthAlgo:         "SHA1withRSA",
	}

	assert.ErrorIs(t, v.Verify(context.Background(), headers, body), ErrUnsupportedAlgo)
}

func TestVerifyRejectsUntrustedCertHost(t *testing.T) {
	v, key, _ := newSigningFixture(t)
	body := []byte("{}")

	headers := WebhookHeaders{
		TransmissionID:   "tx-1",
		TransmissionTime: "2025-06-02T10:00:00Z",
		Signature:        sign(t, key, "tx-1", "2025-06-02T10:00:00Z", body),
		CertURL:          "https://evil.example/cert.pem",
	}
	assert.ErrorIs(t, v.Verify(context.Background(), headers, body), ErrUntrustedCert)

	headers.CertURL = "http://" + v.allowedHost + "/cert.pem"
	assert.ErrorIs(t, v.Verify(context.Background(), headers, body), ErrUntrustedCert)
}

func TestVerifyCachesCertificate(t *testing.T) {
	v, key, certURL := newSigningFixture(t)
	body := []byte("{}")

	headers := WebhookHeaders{
		TransmissionID:   "tx-1",
		TransmissionTime: "2025-06-02T10:00:00Z",
		Signature:        sign(t, key, "tx-1", "2025-06-02T10:00:00Z", body),
		CertURL:          certURL,
	}
	require.NoError(t, v.Verify(context.Background(), headers, body))

	v.mu.Lock()
	_, cached := v.certs[certURL]
	v.mu.Unlock()
	assert.True(t, cached)
}

func TestHeadersFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", nil)
	req.Header.Set("Paypal-Transmission-Id", "tx-9")
	req.Header.Set("Paypal-Transmission-Time", "2025-06-02T10:00:00Z")
	req.Header.Set("Paypal-Transmission-Sig", "c2ln")
	req.Header.Set("Paypal-Cert-Url", "https://api.sandbox.paypal.com/cert.pem")
	req.Header.Set("Paypal-Auth-Algo", "SHA256withRSA")

	h := HeadersFromRequest(req)
	assert.Equal(t, "tx-9", h.TransmissionID)
	assert.Equal(t, "2025-06-02T10:00:00Z", h.TransmissionTime)
	assert.Equal(t, "c2ln", h.Signature)
	assert.Equal(t, "https://api.sandbox.paypal.com/cert.pem", h.CertURL)
	assert.Equal(t, "SHA256withRSA", h.AuthAlgo)
}
