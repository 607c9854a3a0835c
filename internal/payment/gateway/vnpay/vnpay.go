// Package vnpay implements the VNPay signed-redirect protocol: canonical
// hash strings, HMAC-SHA512 signatures, outbound payment URLs and parsing of
// the return callback and IPN parameter sets.
package vnpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/fashion-checkout/pkg/config"
	"github.com/tair/fashion-checkout/pkg/logger"
)

const (
	ParamSecureHash     = "vnp_SecureHash"
	ParamSecureHashType = "vnp_SecureHashType"
	HashTypeHMACSHA512  = "HmacSHA512"

	ResponseCodeSuccess = "00"

	dateLayout = "20060102150405"
)

// Gateway timestamps are rendered in Indochina Time.
var ict = time.FixedZone("ICT", 7*60*60)

// Params is the flat key/value set exchanged with the gateway.
type Params map[string]string

// ParamsFromValues keeps the first value of every query or form key.
func ParamsFromValues(values url.Values) Params {
	params := make(Params, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}
	return params
}

func (p Params) sortedKeys() []string {
	keys := make([]string, 0, len(p))
	for key, value := range p {
		if value == "" || key == ParamSecureHash || key == ParamSecureHashType {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// formEscaper turns url.QueryEscape output into the form encoding the
// gateway hashes with, which keeps '*' literal and escapes '~'.
var formEscaper = strings.NewReplacer("%2A", "*", "~", "%7E")

// FormEscape encodes s the way the gateway does before hashing.
func FormEscape(s string) string {
	return formEscaper.Replace(url.QueryEscape(s))
}

// HashData is the canonical string that gets signed: non-empty parameters
// sorted by key, joined as key=escaped(value). Keys stay raw.
func HashData(params Params) string {
	var b strings.Builder
	for i, key := range params.sortedKeys() {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(FormEscape(params[key]))
	}
	return b.String()
}

// query is HashData with keys escaped as well.
func query(params Params) string {
	var b strings.Builder
	for i, key := range params.sortedKeys() {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(FormEscape(key))
		b.WriteByte('=')
		b.WriteString(FormEscape(params[key]))
	}
	return b.String()
}

// Sign returns the lowercase hex HMAC-SHA512 of data.
func Sign(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// MinorUnits converts an amount to the gateway unit (x100). Amounts with
// more than two decimals are rejected instead of rounded.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(decimal.NewFromInt(100))
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %s is not expressible in minor units", amount)
	}
	if minor.IsNegative() {
		return 0, fmt.Errorf("amount %s is negative", amount)
	}
	return minor.IntPart(), nil
}

// PaymentRequest is what the shop knows about the order being paid.
type PaymentRequest struct {
	OrderCode string
	Amount    decimal.Decimal
	ClientIP  string
}

// Client signs outbound URLs and verifies inbound calls with one merchant key.
type Client struct {
	cfg config.VNPayConfig
	now func() time.Time
}

func NewClient(cfg config.VNPayConfig) *Client {
	return &Client{cfg: cfg, now: time.Now}
}

// WithClock overrides the clock used for create and expire dates.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// PaymentParams assembles the unsigned parameter set for req.
func (c *Client) PaymentParams(req PaymentRequest) (Params, error) {
	amount, err := MinorUnits(req.Amount)
	if err != nil {
		return nil, err
	}

	created := c.now().In(ict)
	return Params{
		"vnp_Version":    c.cfg.Version,
		"vnp_Command":    c.cfg.Command,
		"vnp_TmnCode":    c.cfg.TmnCode,
		"vnp_Amount":     strconv.FormatInt(amount, 10),
		"vnp_CurrCode":   c.cfg.CurrCode,
		"vnp_TxnRef":     req.OrderCode,
		"vnp_OrderInfo":  "Thanh toan don hang: " + req.OrderCode,
		"vnp_OrderType":  c.cfg.OrderType,
		"vnp_Locale":     c.cfg.Locale,
		"vnp_ReturnUrl":  c.cfg.ReturnURL,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_CreateDate": created.Format(dateLayout),
		"vnp_ExpireDate": created.Add(c.cfg.ExpireAfter).Format(dateLayout),
	}, nil
}

// BuildPaymentURL returns the redirect URL for req. The hash type and the
// signature are appended after the canonical query and are not signed.
func (c *Client) BuildPaymentURL(ctx context.Context, req PaymentRequest) (string, error) {
	params, err := c.PaymentParams(req)
	if err != nil {
		return "", err
	}

	signature := Sign(c.cfg.HashSecret, HashData(params))
	logger.Debug(ctx).
		Str("order_code", req.OrderCode).
		Str("return_url", c.cfg.ReturnURL).
		Str("signature", logger.Mask(signature)).
		Msg("VNPay payment URL signed")

	return c.cfg.PayURL + "?" + query(params) +
		"&" + ParamSecureHashType + "=" + HashTypeHMACSHA512 +
		"&" + ParamSecureHash + "=" + signature, nil
}

// Verify recomputes the signature over params without the hash fields and
// compares it in constant time with the one the gateway sent.
func (c *Client) Verify(params Params) bool {
	received := strings.ToLower(params[ParamSecureHash])
	if received == "" {
		return false
	}
	expected := Sign(c.cfg.HashSecret, HashData(params))
	return hmac.Equal([]byte(expected), []byte(received))
}

// SignParams returns a copy of params carrying a valid signature. It is the
// gateway side of Verify and is used to build callbacks in tests and tools.
func (c *Client) SignParams(params Params) Params {
	signed := make(Params, len(params)+2)
	for key, value := range params {
		signed[key] = value
	}
	delete(signed, ParamSecureHash)
	signed[ParamSecureHashType] = HashTypeHMACSHA512
	signed[ParamSecureHash] = Sign(c.cfg.HashSecret, HashData(signed))
	return signed
}

// Callback is the typed view of a return callback or IPN parameter set.
type Callback struct {
	TxnRef        string
	ResponseCode  string
	TransactionNo string
	Amount        string
	BankCode      string
	BankTranNo    string
	CardType      string
	PayDate       string
	OrderInfo     string
	SecureHash    string
	Raw           Params
}

func ParseCallback(params Params) Callback {
	return Callback{
		TxnRef:        params["vnp_TxnRef"],
		ResponseCode:  params["vnp_ResponseCode"],
		TransactionNo: params["vnp_TransactionNo"],
		Amount:        params["vnp_Amount"],
		BankCode:      params["vnp_BankCode"],
		BankTranNo:    params["vnp_BankTranNo"],
		CardType:      params["vnp_CardType"],
		PayDate:       params["vnp_PayDate"],
		OrderInfo:     params["vnp_OrderInfo"],
		SecureHash:    params[ParamSecureHash],
		Raw:           params,
	}
}

// AmountMinor parses vnp_Amount.
func (c Callback) AmountMinor() (int64, error) {
	amount, err := strconv.ParseInt(c.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid vnp_Amount %q: %w", c.Amount, err)
	}
	return amount, nil
}

// MajorAmount is vnp_Amount divided back by 100, or zero when unparsable.
func (c Callback) MajorAmount() decimal.Decimal {
	amount, err := decimal.NewFromString(c.Amount)
	if err != nil {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromInt(100)).Round(2)
}

func (c Callback) Succeeded() bool {
	return c.ResponseCode == ResponseCodeSuccess
}
