package vnpay

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/fashion-checkout/pkg/config"
)

func testClient() *Client {
	return NewClient(config.VNPayConfig{
		PayURL:      "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		TmnCode:     "DEMO0001",
		HashSecret:  "SECRETKEY0123456789",
		ReturnURL:   "http://localhost:8080/api/payments/vnpay/return",
		Version:     "2.1.0",
		Command:     "pay",
		OrderType:   "other",
		Locale:      "vn",
		CurrCode:    "VND",
		ExpireAfter: 15 * time.Minute,
	}).WithClock(func() time.Time {
		return time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)
	})
}

func TestHashData_SortsSkipsEmptyAndEscapesValuesOnly(t *testing.T) {
	params := Params{
		"vnp_OrderInfo":      "Thanh toan don hang: ORD-1",
		"vnp_Amount":         "18000000",
		"vnp_BankCode":       "",
		"vnp_SecureHash":     "deadbeef",
		"vnp_SecureHashType": HashTypeHMACSHA512,
		"vnp_ReturnUrl":      "http://x/y?a=b",
	}

	assert.Equal(t,
		"vnp_Amount=18000000&vnp_OrderInfo=Thanh+toan+don+hang%3A+ORD-1&vnp_ReturnUrl=http%3A%2F%2Fx%2Fy%3Fa%3Db",
		HashData(params))
}

func TestFormEscape_MatchesGatewayEncoder(t *testing.T) {
	cases := map[string]string{
		"Thanh toan *VIP* ~ORD-1~": "Thanh+toan+*VIP*+%7EORD-1%7E",
		"a.b-c_d":                  "a.b-c_d",
		"100%2A":                   "100%252A",
		"áo sơ mi":                 "%C3%A1o+s%C6%A1+mi",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormEscape(in), in)
	}

	params := Params{"vnp_OrderInfo": "Don *1* ~2", "vnp_Amount": "100"}
	assert.Equal(t, "vnp_Amount=100&vnp_OrderInfo=Don+*1*+%7E2", HashData(params))
}

func TestSign_KnownVector(t *testing.T) {
	// HMAC-SHA512 with an empty key over an empty message.
	assert.Equal(t,
		"b936cee86c9f87aa5d3c6f2e84cb5a4239a5fe50480a6ec66b70ab5b1f4ac6730c6c515421b327ec1d69402e53dfb49ad7381eb067b338fd7b0cb22247225d47",
		Sign("", ""))
}

func TestVerify_OrderIndependentRoundTrip(t *testing.T) {
	c := testClient()
	keys := []string{"vnp_TxnRef", "vnp_Amount", "vnp_ResponseCode", "vnp_TransactionNo", "vnp_BankCode", "vnp_PayDate"}
	values := map[string]string{
		"vnp_TxnRef":        "ORD-20240301100000-ABC123",
		"vnp_Amount":        "18000000",
		"vnp_ResponseCode":  "00",
		"vnp_TransactionNo": "14000001",
		"vnp_BankCode":      "NCB",
		"vnp_PayDate":       "20240301101500",
	}

	var reference string
	for shift := range keys {
		params := Params{}
		for i := range keys {
			key := keys[(i+shift)%len(keys)]
			params[key] = values[key]
		}
		signed := c.SignParams(params)
		require.True(t, c.Verify(signed))
		if reference == "" {
			reference = signed[ParamSecureHash]
		}
		assert.Equal(t, reference, signed[ParamSecureHash])
	}
}

func TestVerify_RejectsTampering(t *testing.T) {
	c := testClient()
	signed := c.SignParams(Params{
		"vnp_TxnRef":       "ORD-1",
		"vnp_Amount":       "18000000",
		"vnp_ResponseCode": "00",
	})

	for key := range map[string]bool{"vnp_TxnRef": true, "vnp_Amount": true, "vnp_ResponseCode": true} {
		t.Run(key, func(t *testing.T) {
			tampered := Params{}
			for k, v := range signed {
				tampered[k] = v
			}
			value := []byte(tampered[key])
			if value[0] == '9' {
				value[0] = '8'
			} else {
				value[0] = '9'
			}
			tampered[key] = string(value)
			assert.False(t, c.Verify(tampered))
		})
	}

	missing := Params{"vnp_TxnRef": "ORD-1"}
	assert.False(t, c.Verify(missing))

	other := NewClient(config.VNPayConfig{HashSecret: "another"})
	assert.False(t, other.Verify(signed))
}

func TestBuildPaymentURL(t *testing.T) {
	c := testClient()
	raw, err := c.BuildPaymentURL(context.Background(), PaymentRequest{
		OrderCode: "ORD-20240301100000-ABC123",
		Amount:    decimal.NewFromInt(180000),
		ClientIP:  "203.0.113.7",
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(raw, "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?"))
	assert.Contains(t, raw, "&vnp_SecureHashType=HmacSHA512&vnp_SecureHash=")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	params := ParamsFromValues(u.Query())

	assert.Equal(t, "18000000", params["vnp_Amount"])
	assert.Equal(t, "ORD-20240301100000-ABC123", params["vnp_TxnRef"])
	assert.Equal(t, "Thanh toan don hang: ORD-20240301100000-ABC123", params["vnp_OrderInfo"])
	assert.Equal(t, "20240301100000", params["vnp_CreateDate"])
	assert.Equal(t, "20240301101500", params["vnp_ExpireDate"])
	assert.Equal(t, "203.0.113.7", params["vnp_IpAddr"])
	assert.True(t, c.Verify(params))
}

func TestMinorUnits(t *testing.T) {
	minor, err := MinorUnits(decimal.RequireFromString("180049.50"))
	require.NoError(t, err)
	assert.Equal(t, int64(18004950), minor)

	_, err = MinorUnits(decimal.RequireFromString("1.005"))
	assert.Error(t, err)
}

func TestParseCallback(t *testing.T) {
	cb := ParseCallback(Params{"vnp_Amount": "18004950", "vnp_ResponseCode": "00", "vnp_TxnRef": "ORD-1"})
	amount, err := cb.AmountMinor()
	require.NoError(t, err)
	assert.Equal(t, int64(18004950), amount)
	assert.Equal(t, "180049.5", cb.MajorAmount().String())
	assert.True(t, cb.Succeeded())

	_, err = ParseCallback(Params{"vnp_Amount": "12a"}).AmountMinor()
	assert.Error(t, err)
}
