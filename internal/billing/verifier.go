package billing

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrMissingHeaders   = errors.New("billing: missing webhook signature headers")
	ErrInvalidSignature = errors.New("billing: webhook signature verification failed")
	ErrUntrustedCert    = errors.New("billing: certificate URL host is not trusted")
	ErrUnsupportedAlgo  = errors.New("billing: unsupported auth algorithm")
)

// WebhookHeaders carries the signature headers the processor sends with
// every webhook delivery
type WebhookHeaders struct {
	TransmissionID   string
	TransmissionTime string
	Signature        string
	CertURL          string
	AuthAlgo         string
}

// HeadersFromRequest extracts the processor signature headers
func HeadersFromRequest(r *http.Request) WebhookHeaders {
	return WebhookHeaders{
		TransmissionID:   r.Header.Get("Paypal-Transmission-Id"),
		TransmissionTime: r.Header.Get("Paypal-Transmission-Time"),
		Signature:        r.Header.Get("Paypal-Transmission-Sig"),
		CertURL:          r.Header.Get("Paypal-Cert-Url"),
		AuthAlgo:         r.Header.Get("Paypal-Auth-Algo"),
	}
}

// Verifier checks webhook deliveries against the processor's signing
// certificate. Certificates are fetched once and cached by URL.
type Verifier struct {
	webhookID   string
	allowedHost string
	httpClient  *http.Client
	logger      *zap.Logger

	mu    sync.Mutex
	certs map[string]*rsa.PublicKey
}

func NewVerifier(webhookID, allowedHost string, logger *zap.Logger) *Verifier {
	return &Verifier{
		webhookID:   webhookID,
		allowedHost: allowedHost,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
		certs:       make(map[string]*rsa.PublicKey),
	}
}

// Verify checks the signature over the raw request body. The signed message
// is transmissionID|transmissionTime|webhookID|crc32(body) and the signature
// is base64 SHA256withRSA.
func (v *Verifier) Verify(ctx context.Context, headers WebhookHeaders, body []byte) error {
	if headers.TransmissionID == "" || headers.TransmissionTime == "" ||
		headers.Signature == "" || headers.CertURL == "" {
		return ErrMissingHeaders
	}
	if headers.AuthAlgo != "" && !strings.EqualFold(headers.AuthAlgo, "SHA256withRSA") {
		return ErrUnsupportedAlgo
	}

	publicKey, err := v.certificateKey(ctx, headers.CertURL)
	if err != nil {
		return err
	}

	signature, err := base64.StdEncoding.DecodeString(headers.Signature)
	if err != nil {
		return fmt.Errorf("billing: failed to decode signature: %w", err)
	}

	message := fmt.Sprintf("%s|%s|%s|%d",
		headers.TransmissionID,
		headers.TransmissionTime,
		v.webhookID,
		crc32.ChecksumIEEE(body),
	)
	digest := sha256.Sum256([]byte(message))

	if err := rsa.VerifyPKCS1v15(publicKey, crypto.SHA256, digest[:], signature); err != nil {
		return ErrInvalidSignature
	}

	return nil
}

func (v *Verifier) certificateKey(ctx context.Context, certURL string) (*rsa.PublicKey, error) {
	parsed, err := url.Parse(certURL)
	if err != nil {
		return nil, fmt.Errorf("billing: invalid certificate URL: %w", err)
	}
	if parsed.Scheme != "https" || !strings.EqualFold(parsed.Host, v.allowedHost) {
		return nil, ErrUntrustedCert
	}

	v.mu.Lock()
	cached, ok := v.certs[certURL]
	v.mu.Unlock()
	if ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, certURL, nil)
	if err != nil {
		return nil, fmt.Errorf("billing: failed to build certificate request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("billing: failed to fetch certificate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("billing: certificate fetch returned status %d", resp.StatusCode)
	}

	pemBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("billing: failed to read certificate: %w", err)
	}

	publicKey, err := parseCertificateKey(pemBytes)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.certs[certURL] = publicKey
	v.mu.Unlock()

	v.logger.Debug("cached webhook signing certificate", zap.String("cert_url", certURL))
	return publicKey, nil
}

func parseCertificateKey(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("billing: certificate is not PEM encoded")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("billing: failed to parse certificate: %w", err)
	}

	publicKey, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("billing: certificate does not carry an RSA key")
	}

	return publicKey, nil
}
